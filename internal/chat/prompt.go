package chat

import (
	"encoding/json"
	"fmt"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
)

// maxPromptCourses caps how many matched courses are serialized into
// the prompt; anything past the top matches only inflates token usage.
const maxPromptCourses = 10

// systemPrompt is the assistant persona. Replies must stay grounded in
// the provided course data, which is why the prompt forbids inventing
// courses outright.
const systemPrompt = `당신은 세종대학교 학생들의 수강 신청과 진로 설계를 도와주는 챗봇 "세박사"입니다.

규칙:
- 반드시 한국어로, 친근하고 간결하게 답변하세요.
- 답변은 마크다운 형식으로 작성하세요.
- [검색된 과목 정보]에 포함된 과목만 근거로 답변하세요. 목록에 없는 과목을 지어내지 마세요.
- 검색된 과목이 없으면 솔직하게 찾지 못했다고 말하고, 과목명·교수님 성함·요일·이수구분으로 다시 검색해 보라고 안내하세요.
- 강의 시간, 학수번호, 교수님 성함 등 사실 정보는 제공된 데이터 그대로 전달하세요.`

// BuildRequest assembles the provider request: the question, the
// trimmed history and the matched courses serialized as a JSON block.
func BuildRequest(question string, history []Turn, courses []catalog.CourseRecord) Request {
	return Request{
		Question:    question,
		History:     history,
		CoursesJSON: coursesJSON(courses),
	}
}

// userMessage renders the grounded question sent as the final user
// turn to every provider.
func userMessage(req Request) string {
	return fmt.Sprintf("[검색된 과목 정보]\n%s\n\n[질문]\n%s", req.CoursesJSON, req.Question)
}

func coursesJSON(courses []catalog.CourseRecord) string {
	if len(courses) == 0 {
		return "[]"
	}
	if len(courses) > maxPromptCourses {
		courses = courses[:maxPromptCourses]
	}
	payload, err := json.Marshal(courses)
	if err != nil {
		return "[]"
	}
	return string(payload)
}
