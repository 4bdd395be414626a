package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theme is a selectable colour scheme.
type Theme struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HexColor    string             `bson:"hexColor" json:"hexColor"` // unique, "#RRGGBB"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
