package tenantstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bizdesk/platform/pkg/tenant"
)

// DefaultMongoCollection is the collection read by Mongo.
const DefaultMongoCollection = "tenants"

// caseInsensitive makes equality and $in comparisons ignore case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Mongo reads tenants from a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo creates a Mongo-backed tenant.Store over db's tenants collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection(DefaultMongoCollection)}
}

func (s *Mongo) FindBySubdomain(ctx context.Context, label string) ([]*tenant.Tenant, error) {
	filter := bson.D{
		{Key: "host_type", Value: string(tenant.HostTypeSubdomain)},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "hostname", Value: label}},
			bson.D{{Key: "subdomain", Value: label}},
		}},
	}
	return s.find(ctx, filter)
}

func (s *Mongo) FindByCustomDomain(ctx context.Context, hosts []string) ([]*tenant.Tenant, error) {
	if len(hosts) == 0 {
		return nil, nil
	}
	filter := bson.D{
		{Key: "host_type", Value: string(tenant.HostTypeCustomDomain)},
		{Key: "status", Value: string(tenant.StatusCNAMEActive)},
		{Key: "hostname", Value: bson.D{{Key: "$in", Value: hosts}}},
	}
	return s.find(ctx, filter)
}

func (s *Mongo) find(ctx context.Context, filter bson.D) ([]*tenant.Tenant, error) {
	opts := options.Find().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	var tenants []*tenant.Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return tenants, nil
}

// EnsureIndexes creates the case-insensitive lookup indexes. It is idempotent.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "host_type", Value: 1}, {Key: "hostname", Value: 1}},
			Options: options.Index().SetName("host_type_hostname").SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "host_type", Value: 1}, {Key: "subdomain", Value: 1}},
			Options: options.Index().SetName("host_type_subdomain").SetCollation(caseInsensitive),
		},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}
