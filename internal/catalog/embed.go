package catalog

import _ "embed"

//go:embed data/symptom_questions.json
var defaultQuestionData []byte
