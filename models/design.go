package models

import "gorm.io/datatypes"

type SavedDesign struct {
	RecordModel
	UserID       string                                   `gorm:"index" json:"userId"`
	Name         string                                   `json:"name"`
	State        datatypes.JSONType[GarmentConfiguration] `json:"state"`
	PreviewImage *string                                  `gorm:"type:text" json:"previewImage,omitempty"`
}

func (SavedDesign) TableName() string {
	return "saved_designs"
}

func (d SavedDesign) Configuration() GarmentConfiguration {
	return d.State.Data()
}

type SaveDesignIn struct {
	UserID       string               `json:"userId" validate:"required,max=64"`
	Name         string               `json:"name" validate:"omitempty,max=120"`
	State        GarmentConfiguration `json:"state"`
	PreviewImage *string              `json:"previewImage" validate:"omitempty,max=12000000"`
}
