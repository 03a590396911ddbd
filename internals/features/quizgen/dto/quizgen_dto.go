package dto

// GenerateModuleQuizRequest takes either a transcript or a YouTube link as
// source material; the video path lets the model read the video itself.
type GenerateModuleQuizRequest struct {
	Transcript   string `json:"transcript" validate:"required_without=VideoURL,omitempty,min=10"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	ModuleTitle  string `json:"module_title"`
	NumQuestions int    `json:"num_questions" validate:"omitempty,gte=1,lte=20"`
}

type GenerateFinalTestRequest struct {
	NumQuestions int `json:"num_questions" validate:"omitempty,gte=1,lte=30"`
}

type StoreModuleQuizRequest struct {
	ModuleID string `json:"module_id" validate:"required"`
}

type ExplainAnswersRequest struct {
	ModuleID string `json:"module_id" validate:"required"`

	// one selected option index per question, in question order
	Answers []int `json:"answers" validate:"required,min=1"`
}
