package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
)

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	User        primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDoc) entity() *entity.Task {
	return &entity.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      entity.TaskStatus(d.Status),
		OwnerID:     d.User.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

// ownedFilter scopes id to owner. Both must be ObjectID hex.
func ownedFilter(ownerID, id string) (bson.M, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "user": owner}, nil
}

func (r *TaskRepository) List(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"user": owner}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Search != "" {
		// quoted so user input is matched literally
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	tasks := make([]entity.Task, 0)
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, *doc.entity())
	}
	return tasks, cur.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	var doc taskDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.entity(), nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	owner, err := objectID(t.OwnerID)
	if err != nil {
		return err
	}
	ts := now()
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		User:        owner,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	t.ID, t.CreatedAt, t.UpdatedAt = doc.ID.Hex(), ts, ts
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, p entity.TaskPatch) (*entity.Task, error) {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": now()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.entity(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	var doc taskDoc
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.entity(), nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
