package packets

import "github.com/versecast/versecast/internal/model"

type LoadPlaylistRequest struct {
	Caption string            `json:"caption" binding:"required"`
	Items   []model.ItemProps `json:"items"`
}

type AddItemRequest struct {
	Item      model.ItemProps `json:"item" binding:"required"`
	Index     *int            `json:"index"`
	SetActive bool            `json:"set_active"`
}

type UpdateItemRequest struct {
	Item model.ItemProps `json:"item" binding:"required"`
}

type MoveItemRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

type SetActiveItemRequest struct {
	Item  *int `json:"item" binding:"required"`
	Slide int  `json:"slide"`
}

type SetActiveSlideRequest struct {
	Slide *int `json:"slide" binding:"required"`
}

type NavigateRequest struct {
	Steps int `json:"steps" binding:"required,oneof=-1 1"`
}

type MarkSavedRequest struct {
	Caption string `json:"caption"`
}

type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}
