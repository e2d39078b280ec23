package models

import "time"

type AccountGroup = int

const (
	// AccountGroupRegular is the default group for self-registered users.
	AccountGroupRegular = AccountGroup(iota)
	AccountGroupOperator
)

type AccountState = int8

const (
	AccountStateActive = AccountState(iota)
	AccountStateSuspended
)

const DefaultAvatar = "default.jpg"

type Account struct {
	BaseModel

	Name     string       `json:"name" gorm:"uniqueIndex"`
	Password string       `json:"-"`
	Avatar   string       `json:"avatar"`
	GroupID  AccountGroup `json:"group_id"`
	State    AccountState `json:"state"`

	Posts []Post `json:"posts" gorm:"foreignKey:AuthorID"`
}

// AccountView is the full caller-facing projection of an account.
// The password hash never leaves the row struct.
type AccountView struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Avatar    string       `json:"avatar"`
	GroupID   AccountGroup `json:"group_id"`
	State     AccountState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AccountPublicView is the projection safe to show to anyone.
type AccountPublicView struct {
	Name   string       `json:"name"`
	Avatar string       `json:"avatar"`
	State  AccountState `json:"state"`
}

func (v Account) ToView() AccountView {
	return AccountView{
		ID:        v.ID,
		Name:      v.Name,
		Avatar:    v.Avatar,
		GroupID:   v.GroupID,
		State:     v.State,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (v Account) ToPublicView() AccountPublicView {
	return AccountPublicView{
		Name:   v.Name,
		Avatar: v.Avatar,
		State:  v.State,
	}
}

// UploadResult is what the upload collaborator hands over after it stored
// an avatar file. Contents are already validated on its side.
type UploadResult struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
	Detail      string `json:"detail"`
}
