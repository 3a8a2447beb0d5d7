package repository

import (
	"context"
	"errors"
	"time"

	"taskmanager/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// EnsureMongoIndexes creates the indexes the Mongo stores rely on. The unique
// username index is what turns a racing registration into ErrDuplicate.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}}},
	})
	return err
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"session_token": token})
}

func (r *MongoUserRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, u)
	return mapMongoError(err)
}

func (r *MongoUserRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"username": u.Username, "role": u.Role}},
	)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetSessionToken(ctx context.Context, id, token string) error {
	update := bson.M{"$set": bson.M{"session_token": token}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"session_token": ""}}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapMongoError(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapMongoError(err)
	}
	var res []*domain.User
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// taskDocument stores a missing due date as null so that it sorts apart from real dates.
type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"due_date"`
	UserID      string     `bson:"user_id"`
	CreatedAt   time.Time  `bson:"created_at"`
}

func toTaskDocument(t *domain.Task) taskDocument {
	return taskDocument{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     nullableTime(t.DueDate),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
	}
}

func (d taskDocument) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
	if d.DueDate != nil {
		t.DueDate = d.DueDate.UTC()
	}
	return t
}

type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(tasksCollection)}
}

var byCreation = bson.D{{Key: "created_at", Value: 1}}

func (r *MongoTaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(byCreation))
}

func (r *MongoTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var d taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapMongoError(err)
	}
	return d.toDomain(), nil
}

func (r *MongoTaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(byCreation))
}

func (r *MongoTaskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"status": string(status)}, options.Find().SetSort(byCreation))
}

func (r *MongoTaskRepository) ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"priority": string(priority)}, options.Find().SetSort(byCreation))
}

// ListByDueDate sorts in two passes since Mongo orders null before dates.
func (r *MongoTaskRepository) ListByDueDate(ctx context.Context) ([]*domain.Task, error) {
	dated, err := r.find(ctx,
		bson.M{"due_date": bson.M{"$type": "date"}},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	undated, err := r.find(ctx,
		bson.M{"due_date": bson.M{"$not": bson.M{"$type": "date"}}},
		options.Find().SetSort(byCreation),
	)
	if err != nil {
		return nil, err
	}
	return append(dated, undated...), nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	t.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, toTaskDocument(t))
	return mapMongoError(err)
}

func (r *MongoTaskRepository) Update(ctx context.Context, t *domain.Task) error {
	d := toTaskDocument(t)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": bson.M{
		"title":       d.Title,
		"description": d.Description,
		"status":      d.Status,
		"priority":    d.Priority,
		"due_date":    d.DueDate,
		"user_id":     d.UserID,
	}})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.Task, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapMongoError(err)
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		res = append(res, d.toDomain())
	}
	return res, nil
}

func mapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
