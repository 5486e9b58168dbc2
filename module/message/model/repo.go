package model

import (
	"context"
	"time"

	"SupportChat/tools/errs"
	"SupportChat/tools/ids"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "messages"

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type Repo struct {
	db *mongo.Database
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{db: db}
}

func (r *Repo) collection() *mongo.Collection {
	return r.db.Collection(collectionName)
}

func (f *ListFilters) toBSON() bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.StaffID != "" {
		filter["staff_id"] = f.StaffID
	}
	switch f.Status {
	case StatusOpen:
		filter["closed"] = false
	case StatusClosed:
		filter["closed"] = true
	}
	if f.Read != nil {
		filter["read"] = *f.Read
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	return filter
}

func (r *Repo) List(ctx context.Context, f ListFilters) (*ListResult, error) {
	page := f.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filter := f.toBSON()
	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("count messages", "err", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "create_time", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("find messages", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	items := make([]Message, 0, limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("decode messages", "err", err)
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Message, error) {
	var m Message
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("message", "id", id)
	}
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("find message", "id", id, "err", err)
	}
	return &m, nil
}

func (r *Repo) Insert(ctx context.Context, m *Message) (*Message, error) {
	now := time.Now()
	if m.ID == "" {
		m.ID = ids.GenerateString()
	}
	if m.Priority == "" {
		m.Priority = PriorityNormal
	}
	m.Closed = false
	m.Read = false
	m.CreateTime = now
	m.UpdateTime = now

	if _, err := r.collection().InsertOne(ctx, m); err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("insert message", "err", err)
	}
	return m, nil
}

// UpdateFlags 只翻转传入的标记位，nil 表示保持不变；返回更新后的记录。
func (r *Repo) UpdateFlags(ctx context.Context, id string, closed, read *bool) (*Message, error) {
	set := bson.M{"update_time": time.Now()}
	if closed != nil {
		set["closed"] = *closed
	}
	if read != nil {
		set["read"] = *read
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m Message
	err := r.collection().
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("message", "id", id)
	}
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("update flags", "id", id, "err", err)
	}
	return &m, nil
}

func (r *Repo) Statistics(ctx context.Context, customerID string) (*Statistics, error) {
	base := bson.M{}
	if customerID != "" {
		base["customer_id"] = customerID
	}

	count := func(extra bson.M) (int64, error) {
		filter := bson.M{}
		for k, v := range base {
			filter[k] = v
		}
		for k, v := range extra {
			filter[k] = v
		}
		return r.collection().CountDocuments(ctx, filter)
	}

	total, err := count(nil)
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("count total", "err", err)
	}
	open, err := count(bson.M{"closed": false})
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("count open", "err", err)
	}
	unread, err := count(bson.M{"read": false})
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("count unread", "err", err)
	}
	return &Statistics{Total: total, Open: open, Closed: total - open, Unread: unread}, nil
}

// ListCustomers 从消息记录中聚合去重客户（按最近一条消息的姓名/邮箱）。
func (r *Repo) ListCustomers(ctx context.Context, limit int) ([]CustomerBrief, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "create_time", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$customer_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$customer_name"}}},
			{Key: "email", Value: bson.D{{Key: "$first", Value: "$customer_email"}}},
		}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("aggregate customers", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]CustomerBrief, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrOperationFailed.WrapMsg("decode customers", "err", err)
	}
	return out, nil
}
