package model

import "time"

// Contact 紧急联系人。Priority 越小越先收到警报。
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Priority int    `json:"priority"`
}

// ContactItem 紧急联系人展示项
type ContactItem struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Priority int    `json:"priority"`
}
