package models

import "time"

const (
	GameScheduled  = "scheduled"
	GameInProgress = "in_progress"
	GameFinal      = "final"
)

// Game mirrors an external event from the score feed. The feed plumbing
// upserts rows; the settlement pass only reads them. WinningTeam is set by
// the feed when Status is final; a final game with no winner is a tie.
type Game struct {
	ID     string `gorm:"type:varchar(100);primaryKey"`
	Sport  string `gorm:"type:varchar(40);not null;index"`
	League string `gorm:"type:varchar(40)"`

	HomeTeam  string `gorm:"type:varchar(100);not null"`
	AwayTeam  string `gorm:"type:varchar(100);not null"`
	HomeScore int    `gorm:"not null"`
	AwayScore int    `gorm:"not null"`

	Status      string  `gorm:"type:varchar(20);not null;index"`
	WinningTeam *string `gorm:"type:varchar(100)"`

	StartsAt          *time.Time `gorm:"type:timestamptz"`
	ExternalUpdatedAt time.Time  `gorm:"type:timestamptz;index"`
	CreatedAt         time.Time  `gorm:"type:timestamptz;autoCreateTime"`
}

func (Game) TableName() string {
	return "games"
}
