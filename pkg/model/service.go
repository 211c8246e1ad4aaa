package model

type Service struct {
	ID              string `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin     int    `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Price           int    `json:"price" bson:"price" validate:"min=0"`
	BufferBeforeMin int    `json:"buffer_before_min" bson:"buffer_before_min" validate:"min=0,max=120"`
	BufferAfterMin  int    `json:"buffer_after_min" bson:"buffer_after_min" validate:"min=0,max=120"`
	Description     string `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Icon            string `json:"icon,omitempty" bson:"icon,omitempty" validate:"omitempty,max=100"`
}

type ServiceUpdate struct {
	Name            string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMin     *int   `json:"duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	Price           *int   `json:"price,omitempty" validate:"omitempty,min=0"`
	BufferBeforeMin *int   `json:"buffer_before_min,omitempty" validate:"omitempty,min=0,max=120"`
	BufferAfterMin  *int   `json:"buffer_after_min,omitempty" validate:"omitempty,min=0,max=120"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon            *string `json:"icon,omitempty" validate:"omitempty,max=100"`
}
