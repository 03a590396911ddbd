package dto

type SubmitQuizRequest struct {
	ModuleID string `json:"module_id" validate:"required"`

	// question index -> selected option index
	Answers map[int]int `json:"answers" validate:"required"`

	// optional override; 0 falls back to the module's configured threshold
	PassingScore int `json:"passing_score" validate:"omitempty,gte=1,lte=100"`
}

type MarkModuleCompleteRequest struct {
	ModuleID string `json:"module_id" validate:"required"`
}
