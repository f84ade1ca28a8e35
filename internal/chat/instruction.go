package chat

import (
	"strings"

	"github.com/raphaelgruber/sayar/internal/models"
)

const persona = `You are a helpful AI assistant for Myanmar teachers. You help with:
- Creating lesson plans and teaching materials
- Designing exams and assessments
- Analyzing student performance and grades
- Creating report cards and progress reports
- Managing classroom activities

You can respond in both English and Myanmar (Burmese) language based on the user's preference.
When creating printable content, format it clearly with proper structure.
For charts and analysis, provide text-based representations that can be understood easily.`

// SystemInstruction builds the system prompt from the persona and the
// teacher context in settings. Blank context fields are left out.
func SystemInstruction(s models.AppSettings) string {
	parts := []string{persona}
	if strings.TrimSpace(s.TeacherGrade) != "" {
		parts = append(parts, "The teacher currently teaches: "+s.TeacherGrade)
	}
	if strings.TrimSpace(s.TeacherSubject) != "" {
		parts = append(parts, "Subject specialty: "+s.TeacherSubject)
	}
	return strings.Join(parts, "\n\n")
}
