package service

import (
	"context"

	"SupportChat/logger"
	"SupportChat/module/message/event"
	"SupportChat/module/message/model"
	"SupportChat/service/eventbus"
	"SupportChat/tools/errs"
)

// Store 消息存储边界。mongo 实现见 module/message/model，
// 单测可注入内存实现。
type Store interface {
	List(ctx context.Context, f model.ListFilters) (*model.ListResult, error)
	FindByID(ctx context.Context, id string) (*model.Message, error)
	Insert(ctx context.Context, m *model.Message) (*model.Message, error)
	UpdateFlags(ctx context.Context, id string, closed, read *bool) (*model.Message, error)
	Statistics(ctx context.Context, customerID string) (*model.Statistics, error)
	ListCustomers(ctx context.Context, limit int) ([]model.CustomerBrief, error)
}

// MessageService 生命周期服务：每次成功落库后在总线上发布领域事件。
// 失败的变更不发事件；同一消息的并发变更不做串行化，后完成者决定最终标记位。
type MessageService struct {
	store Store
	bus   *eventbus.Bus
}

func NewMessageService(store Store, bus *eventbus.Bus) *MessageService {
	return &MessageService{store: store, bus: bus}
}

type CreateParams struct {
	CustomerID    string         `json:"customerId"`
	CustomerName  string         `json:"customerName"`
	CustomerEmail string         `json:"customerEmail"`
	StaffID       string         `json:"staffId"`
	OrderID       string         `json:"orderId"`
	Subject       string         `json:"subject"`
	Content       string         `json:"content"`
	Priority      model.Priority `json:"priority"`
}

func (p *CreateParams) validate() error {
	switch {
	case p.CustomerID == "":
		return errs.ErrArgs.WrapMsg("customerId required")
	case p.StaffID == "":
		return errs.ErrArgs.WrapMsg("staffId required")
	case p.Subject == "":
		return errs.ErrArgs.WrapMsg("subject required")
	case p.Content == "":
		return errs.ErrArgs.WrapMsg("content required")
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return errs.ErrArgs.WrapMsg("priority", "got", string(p.Priority))
	}
	return nil
}

func (s *MessageService) Create(ctx context.Context, in CreateParams) (*model.Message, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m, err := s.store.Insert(ctx, &model.Message{
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		StaffID:       in.StaffID,
		OrderID:       in.OrderID,
		Subject:       in.Subject,
		Content:       in.Content,
		Priority:      in.Priority,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.MessageCreated{
		Message:     *m,
		RecipientID: m.CustomerID,
		SenderID:    m.StaffID,
	})
	logger.Infof("[message] created id=%s customer=%s staff=%s", m.ID, m.CustomerID, m.StaffID)
	return m, nil
}

func (s *MessageService) Close(ctx context.Context, id, closerID string) (*model.Message, error) {
	if id == "" {
		return nil, errs.ErrArgs.WrapMsg("messageId required")
	}
	closed := true
	m, err := s.store.UpdateFlags(ctx, id, &closed, nil)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.MessageClosed{
		MessageID: m.ID,
		Message:   *m,
		CloserID:  closerID,
		SenderID:  m.StaffID,
	})
	logger.Infof("[message] closed id=%s closer=%s", m.ID, closerID)
	return m, nil
}

func (s *MessageService) MarkRead(ctx context.Context, id, readerID string) (*model.Message, error) {
	if id == "" {
		return nil, errs.ErrArgs.WrapMsg("messageId required")
	}
	read := true
	m, err := s.store.UpdateFlags(ctx, id, nil, &read)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.MessageRead{
		MessageID: m.ID,
		Message:   *m,
		ReaderID:  readerID,
		SenderID:  m.StaffID,
	})
	logger.Infof("[message] read id=%s reader=%s", m.ID, readerID)
	return m, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (*model.Message, error) {
	if id == "" {
		return nil, errs.ErrArgs.WrapMsg("messageId required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *MessageService) List(ctx context.Context, f model.ListFilters) (*model.ListResult, error) {
	return s.store.List(ctx, f)
}

func (s *MessageService) Statistics(ctx context.Context, customerID string) (*model.Statistics, error) {
	return s.store.Statistics(ctx, customerID)
}

func (s *MessageService) Customers(ctx context.Context, limit int) ([]model.CustomerBrief, error) {
	return s.store.ListCustomers(ctx, limit)
}
