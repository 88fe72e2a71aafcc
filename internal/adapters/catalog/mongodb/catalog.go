package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/ports/catalog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDatabase   = "app_db"
	collectionName    = "substances"
	searchLimit int64 = 100
)

// Catalog lee directamente la colección "substances" que alimenta la API del catálogo.
type Catalog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open conecta y verifica con un ping (3s).
func Open(ctx context.Context, uri, database string) (*Catalog, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongodb: MONGO_URL required")
	}
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return &Catalog{client: client, coll: client.Database(database).Collection(collectionName)}, nil
}

var _ catalog.Catalog = (*Catalog)(nil)

type itemDoc struct {
	Name     string `bson:"name"`
	Summary  string `bson:"summary,omitempty"`
	Featured bool   `bson:"featured,omitempty"`
	URL      string `bson:"url,omitempty"`
}

// nameFilter arma el filtro case-insensitive. El texto se escapa: es input de usuario.
func nameFilter(text string, anchored bool) bson.M {
	pattern := regexp.QuoteMeta(text)
	if anchored {
		pattern = "^" + pattern + "$"
	}
	return bson.M{"name": primitive.Regex{Pattern: pattern, Options: "i"}}
}

func (c *Catalog) find(ctx context.Context, filter bson.M) ([]substances.Item, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "summary": 1, "featured": 1, "url": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(searchLimit)

	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	out := []substances.Item{}
	for cur.Next(ctx) {
		var d itemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, substances.Item{Name: d.Name, Summary: d.Summary, Featured: d.Featured, URL: d.URL})
	}
	return out, cur.Err()
}

func (c *Catalog) SearchByPrefix(ctx context.Context, text string) ([]substances.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return c.ListAll(ctx)
	}
	return c.find(ctx, nameFilter(text, false))
}

func (c *Catalog) ListAll(ctx context.Context) ([]substances.Item, error) {
	return c.find(ctx, bson.M{})
}

// GetDetail: primero match exacto, después case-insensitive.
func (c *Catalog) GetDetail(ctx context.Context, name string) (substances.Substance, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return substances.Substance{}, catalog.ErrNotFound
	}

	var doc bson.M
	err := c.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = c.coll.FindOne(ctx, nameFilter(name, true)).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return substances.Substance{}, catalog.ErrNotFound
	}
	if err != nil {
		return substances.Substance{}, err
	}
	return decodeSubstance(doc)
}

// decodeSubstance pasa el documento por JSON extendido relajado para reutilizar
// los tags json del modelo (tolerance/status dinámicos incluidos).
func decodeSubstance(doc bson.M) (substances.Substance, error) {
	id := ""
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	}
	delete(doc, "_id")

	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return substances.Substance{}, fmt.Errorf("mongodb: encode document: %w", err)
	}

	var s substances.Substance
	if err := json.Unmarshal(raw, &s); err != nil {
		return substances.Substance{}, fmt.Errorf("mongodb: decode substance: %w", err)
	}
	s.ID = id
	return s, nil
}

func (c *Catalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
