package model

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Message 客服消息记录。closed/read 为两个独立的标记位，
// 状态 open/closed 是派生视图，不单独存储。
type Message struct {
	ID            string    `bson:"_id" json:"id"`
	CustomerID    string    `bson:"customer_id" json:"customerId"`
	CustomerName  string    `bson:"customer_name,omitempty" json:"customerName,omitempty"`
	CustomerEmail string    `bson:"customer_email,omitempty" json:"customerEmail,omitempty"`
	StaffID       string    `bson:"staff_id" json:"staffId"`
	OrderID       string    `bson:"order_id,omitempty" json:"orderId,omitempty"`
	Subject       string    `bson:"subject" json:"subject"`
	Content       string    `bson:"content" json:"content"`
	Priority      Priority  `bson:"priority" json:"priority"`
	Closed        bool      `bson:"closed" json:"closed"`
	Read          bool      `bson:"read" json:"read"`
	CreateTime    time.Time `bson:"create_time" json:"createTime"`
	UpdateTime    time.Time `bson:"update_time" json:"updateTime"`
}

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

func (m *Message) Status() string {
	if m.Closed {
		return StatusClosed
	}
	return StatusOpen
}

// ListFilters 列表查询条件；零值字段不参与过滤。
type ListFilters struct {
	CustomerID string
	StaffID    string
	Status     string // open / closed
	Read       *bool
	Priority   Priority
	Page       int
	Limit      int
}

type ListResult struct {
	Items []Message `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type Statistics struct {
	Total  int64 `json:"total"`
	Open   int64 `json:"open"`
	Closed int64 `json:"closed"`
	Unread int64 `json:"unread"`
}

type CustomerBrief struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}
