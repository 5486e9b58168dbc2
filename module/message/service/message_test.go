package service

import (
	"context"
	"strconv"
	"testing"

	"SupportChat/module/message/event"
	"SupportChat/module/message/model"
	"SupportChat/service/eventbus"
	"SupportChat/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore 内存实现，单测用。
type memStore struct {
	seq  int
	msgs map[string]*model.Message
}

func newMemStore() *memStore {
	return &memStore{msgs: make(map[string]*model.Message)}
}

func (s *memStore) Insert(_ context.Context, m *model.Message) (*model.Message, error) {
	s.seq++
	m.ID = "m" + strconv.Itoa(s.seq)
	if m.Priority == "" {
		m.Priority = model.PriorityNormal
	}
	m.Closed = false
	m.Read = false
	cp := *m
	s.msgs[m.ID] = &cp
	return m, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*model.Message, error) {
	m, ok := s.msgs[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WrapMsg("message", "id", id)
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) UpdateFlags(_ context.Context, id string, closed, read *bool) (*model.Message, error) {
	m, ok := s.msgs[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WrapMsg("message", "id", id)
	}
	if closed != nil {
		m.Closed = *closed
	}
	if read != nil {
		m.Read = *read
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) List(_ context.Context, _ model.ListFilters) (*model.ListResult, error) {
	items := make([]model.Message, 0, len(s.msgs))
	for _, m := range s.msgs {
		items = append(items, *m)
	}
	return &model.ListResult{Items: items, Total: int64(len(items)), Page: 1, Limit: len(items)}, nil
}

func (s *memStore) Statistics(_ context.Context, _ string) (*model.Statistics, error) {
	stats := &model.Statistics{}
	for _, m := range s.msgs {
		stats.Total++
		if m.Closed {
			stats.Closed++
		} else {
			stats.Open++
		}
		if !m.Read {
			stats.Unread++
		}
	}
	return stats, nil
}

func (s *memStore) ListCustomers(_ context.Context, _ int) ([]model.CustomerBrief, error) {
	return nil, nil
}

func collect(bus *eventbus.Bus) *[]eventbus.Event {
	var got []eventbus.Event
	for _, kind := range []string{event.KindCreated, event.KindRead, event.KindClosed} {
		_ = bus.Subscribe(kind, func(e eventbus.Event) { got = append(got, e) })
	}
	return &got
}

func newFixture() (*MessageService, *memStore, *[]eventbus.Event) {
	store := newMemStore()
	bus := eventbus.New()
	got := collect(bus)
	return NewMessageService(store, bus), store, got
}

func TestCreatePublishesEvent(t *testing.T) {
	svc, _, got := newFixture()

	m, err := svc.Create(context.Background(), CreateParams{
		CustomerID: "42", StaffID: "7", Subject: "S", Content: "C",
	})
	require.NoError(t, err)
	assert.False(t, m.Closed)
	assert.False(t, m.Read)
	assert.Equal(t, model.PriorityNormal, m.Priority)
	assert.Equal(t, model.StatusOpen, m.Status())

	require.Len(t, *got, 1)
	ev, ok := (*got)[0].(event.MessageCreated)
	require.True(t, ok)
	assert.Equal(t, "42", ev.RecipientID)
	assert.Equal(t, "7", ev.SenderID)
	assert.Equal(t, m.ID, ev.Message.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, got := newFixture()

	cases := []CreateParams{
		{StaffID: "7", Subject: "S", Content: "C"},
		{CustomerID: "42", Subject: "S", Content: "C"},
		{CustomerID: "42", StaffID: "7", Content: "C"},
		{CustomerID: "42", StaffID: "7", Subject: "S"},
		{CustomerID: "42", StaffID: "7", Subject: "S", Content: "C", Priority: "urgent"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errs.ErrArgs.Is(err), "want ArgsError, got %v", err)
	}
	// 校验失败不发事件
	assert.Empty(t, *got)
}

func TestCloseAndMarkRead(t *testing.T) {
	svc, _, got := newFixture()

	m, err := svc.Create(context.Background(), CreateParams{
		CustomerID: "42", StaffID: "7", Subject: "S", Content: "C",
	})
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), m.ID, "7")
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assert.Equal(t, model.StatusClosed, closed.Status())

	// closed 与 read 正交：关闭后仍可标记已读
	read, err := svc.MarkRead(context.Background(), m.ID, "42")
	require.NoError(t, err)
	assert.True(t, read.Read)
	assert.True(t, read.Closed)

	require.Len(t, *got, 3)
	cev, ok := (*got)[1].(event.MessageClosed)
	require.True(t, ok)
	assert.Equal(t, "7", cev.CloserID)
	assert.Equal(t, "7", cev.SenderID)

	rev, ok := (*got)[2].(event.MessageRead)
	require.True(t, ok)
	assert.Equal(t, "42", rev.ReaderID)
	assert.Equal(t, "7", rev.SenderID)
}

func TestDoubleCloseIdempotentFlagNonIdempotentEvents(t *testing.T) {
	svc, _, got := newFixture()

	m, err := svc.Create(context.Background(), CreateParams{
		CustomerID: "42", StaffID: "7", Subject: "S", Content: "C",
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		closed, err := svc.Close(context.Background(), m.ID, "7")
		require.NoError(t, err)
		assert.True(t, closed.Closed)
	}
	// 标记位幂等，事件不去重：两次 close 两条事件
	events := *got
	require.Len(t, events, 3)
	assert.Equal(t, event.KindClosed, events[1].Kind())
	assert.Equal(t, event.KindClosed, events[2].Kind())
}

func TestNotFoundPublishesNothing(t *testing.T) {
	svc, _, got := newFixture()

	_, err := svc.Close(context.Background(), "missing", "7")
	require.Error(t, err)
	assert.True(t, errs.ErrRecordNotFound.Is(err))

	_, err = svc.MarkRead(context.Background(), "missing", "42")
	require.Error(t, err)
	assert.True(t, errs.ErrRecordNotFound.Is(err))

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.ErrRecordNotFound.Is(err))

	assert.Empty(t, *got)
}
