package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/persistence"
)

type jobDocument struct {
	ID          string     `bson:"_id"`
	CreatedBy   string     `bson:"createdBy"`
	Company     string     `bson:"company"`
	Position    string     `bson:"position"`
	Status      string     `bson:"status"`
	JobType     string     `bson:"jobType"`
	JobLocation string     `bson:"jobLocation"`
	AppliedAt   *time.Time `bson:"appliedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func (d jobDocument) toDomain() domain.Job {
	return domain.Job{
		ID:          d.ID,
		CreatedBy:   d.CreatedBy,
		Company:     d.Company,
		Position:    d.Position,
		Status:      domain.JobStatus(d.Status),
		JobType:     domain.JobType(d.JobType),
		JobLocation: d.JobLocation,
		AppliedAt:   d.AppliedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoJobRepository struct {
	coll *mongo.Collection
}

// NewMongoJobRepository returns a MongoDB-backed implementation.
func NewMongoJobRepository(db *mongo.Database) JobRepository {
	return &mongoJobRepository{coll: db.Collection(persistence.JobsCollection)}
}

func (r *mongoJobRepository) Create(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	doc := jobDocument{
		ID:          uuid.NewString(),
		CreatedBy:   job.CreatedBy,
		Company:     job.Company,
		Position:    job.Position,
		Status:      string(job.Status),
		JobType:     string(job.JobType),
		JobLocation: job.JobLocation,
		AppliedAt:   job.AppliedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	job.ID = doc.ID
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (r *mongoJobRepository) Update(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	set := bson.M{
		"company":     job.Company,
		"position":    job.Position,
		"status":      string(job.Status),
		"jobType":     string(job.JobType),
		"jobLocation": job.JobLocation,
		"updatedAt":   now,
	}
	update := bson.M{"$set": set}
	if job.AppliedAt != nil {
		set["appliedAt"] = *job.AppliedAt
	} else {
		update["$unset"] = bson.M{"appliedAt": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": job.ID}, update)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	job.UpdatedAt = now
	return nil
}

func (r *mongoJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var doc jobDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	job := doc.toDomain()
	return &job, nil
}

func (r *mongoJobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoJobRepository) List(ctx context.Context, filter JobFilter) ([]domain.Job, int64, error) {
	query := mongoJobQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := normalizeLimit(filter.Limit, filter.Offset)
	opts := options.Find().
		SetSort(mongoSort(filter.Sort)).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	jobs := make([]domain.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, doc.toDomain())
	}
	return jobs, total, nil
}

func (r *mongoJobRepository) CountByStatus(ctx context.Context, userID string) (map[domain.JobStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdBy": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.JobStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *mongoJobRepository) MonthlyApplications(ctx context.Context, userID string, months int) ([]domain.MonthlyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdBy": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"year": bson.M{"$year": "$createdAt"}, "month": bson.M{"$month": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}}}},
		{{Key: "$limit", Value: months}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	result := make([]domain.MonthlyCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.MonthlyCount{Year: row.ID.Year, Month: time.Month(row.ID.Month), Count: row.Count})
	}
	return result, nil
}

// mongoJobQuery builds the find filter for a listing. The search term is matched literally.
func mongoJobQuery(filter JobFilter) bson.M {
	query := bson.M{"createdBy": filter.CreatedBy}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.JobType != nil {
		query["jobType"] = string(*filter.JobType)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"position": pattern},
			bson.M{"company": pattern},
		}
	}
	return query
}

func mongoSort(sort domain.JobSort) bson.D {
	switch sort {
	case domain.JobSortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case domain.JobSortAZ:
		return bson.D{{Key: "position", Value: 1}}
	case domain.JobSortZA:
		return bson.D{{Key: "position", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}
