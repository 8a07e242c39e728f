package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type taskDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	Name           string             `bson:"name"`
	Cost           float64            `bson:"cost"`
	DueDate        time.Time          `bson:"due_date"`
	Description    string             `bson:"description,omitempty"`
	Status         string             `bson:"status,omitempty"`
	Priority       string             `bson:"priority,omitempty"`
	AssignedTo     string             `bson:"assigned_to,omitempty"`
	CreatedBy      string             `bson:"created_by,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	CompletionDate *time.Time         `bson:"completion_date,omitempty"`
	Notes          string             `bson:"notes,omitempty"`
	Category       string             `bson:"category,omitempty"`
	DisplayOrder   int                `bson:"display_order"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	return taskDoc{
		UserID:         t.UserID,
		Name:           t.Name,
		Cost:           t.Cost,
		DueDate:        t.DueDate.UTC(),
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt.UTC(),
		CompletionDate: t.CompletionDate,
		Notes:          t.Notes,
		Category:       t.Category,
		DisplayOrder:   t.DisplayOrder,
	}
}

func (d taskDoc) toDomain() *domain.Task {
	t := &domain.Task{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Name:         d.Name,
		Cost:         d.Cost,
		DueDate:      d.DueDate.UTC(),
		Description:  d.Description,
		Status:       domain.TaskStatus(d.Status),
		Priority:     domain.TaskPriority(d.Priority),
		AssignedTo:   d.AssignedTo,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt.UTC(),
		Notes:        d.Notes,
		Category:     d.Category,
		DisplayOrder: d.DisplayOrder,
	}
	if d.CompletionDate != nil {
		c := d.CompletionDate.UTC()
		t.CompletionDate = &c
	}
	return t
}

// ownedFilter matches a single task of the user. An id that is not a valid
// ObjectID cannot match anything.
func ownedFilter(userID, id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": userID}, true
}

var byDisplayOrder = bson.D{{Key: "display_order", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toTaskDoc(t)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTaskName
		}
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	filter, ok := ownedFilter(userID, id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.findOne(ctx, filter)
}

func (r *TaskRepository) FindByName(ctx context.Context, userID, name string) (*domain.Task, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "name": name})
}

func (r *TaskRepository) FindByDisplayOrder(ctx context.Context, userID string, order int) (*domain.Task, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "display_order": order})
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *TaskRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Task, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"user_id": userID, "_id": bson.M{"$in": oids}})
}

func (r *TaskRepository) MaxDisplayOrder(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "display_order", Value: -1}}).
		SetProjection(bson.M{"display_order": 1})

	var doc struct {
		DisplayOrder int `bson:"display_order"`
	}
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	return doc.DisplayOrder, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	filter, ok := ownedFilter(t.UserID, t.ID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":        t.Name,
		"cost":        t.Cost,
		"due_date":    t.DueDate.UTC(),
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"assigned_to": t.AssignedTo,
		"created_by":  t.CreatedBy,
		"notes":       t.Notes,
		"category":    t.Category,
	}
	update := bson.M{"$set": set}
	if t.CompletionDate != nil {
		set["completion_date"] = t.CompletionDate.UTC()
	} else {
		update["$unset"] = bson.M{"completion_date": ""}
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTaskName
		}
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	filter, ok := ownedFilter(userID, id)
	if !ok {
		return domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// SetDisplayOrders sends all updates in one ordered bulk write. It is not
// atomic on a standalone server.
func (r *TaskRepository) SetDisplayOrders(ctx context.Context, userID string, orders map[string]int) error {
	models := make([]mongo.WriteModel, 0, len(orders))
	for id, order := range orders {
		filter, ok := ownedFilter(userID, id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$set": bson.M{"display_order": order}}))
	}
	if len(models) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("set display orders: %w", err)
	}
	return nil
}

func (r *TaskRepository) findOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	err := r.col.FindOne(ctx, filter, options.FindOne().SetSort(byDisplayOrder)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) list(ctx context.Context, filter bson.M) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(byDisplayOrder))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}
