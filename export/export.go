// Package export writes finished match records to a remote table. The
// target is addressed by a three-part "project,instance,table" identifier:
// the instance is the connection URI, the project the database and the
// table the collection.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"goeval/game"
)

// Target identifies one remote table.
type Target struct {
	Project  string
	Instance string
	Table    string
}

// ParseTarget splits a "project,instance,table" spec. Anything else is a
// configuration error; callers treat an empty spec as export disabled and
// do not call this.
func ParseTarget(spec string) (Target, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return Target{}, fmt.Errorf("export target must be of the form project,instance,table, got %q", spec)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Target{}, fmt.Errorf("export target has an empty field: %q", spec)
		}
	}
	return Target{
		Project:  strings.TrimSpace(parts[0]),
		Instance: strings.TrimSpace(parts[1]),
		Table:    strings.TrimSpace(parts[2]),
	}, nil
}

// Exporter holds one connection to the remote table.
type Exporter struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func Connect(ctx context.Context, t Target) (*Exporter, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(t.Instance))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", t.Instance, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping %s: %w", t.Instance, err)
	}
	return &Exporter{
		client: client,
		coll:   client.Database(t.Project).Collection(t.Table),
	}, nil
}

// Export inserts one finished match record.
func (e *Exporter) Export(ctx context.Context, g *game.Game, name, tag string) error {
	moves := make([]string, 0, len(g.Moves()))
	for _, mi := range g.Moves() {
		moves = append(moves, fmt.Sprintf("%s%s", mi.Color, mi.Move.GTP(g.Size())))
	}
	_, err := e.coll.InsertOne(ctx, bson.M{
		"name":       name,
		"tag":        tag,
		"black":      g.BlackName(),
		"white":      g.WhiteName(),
		"result":     g.Result(),
		"result_str": g.ResultString(),
		"moves":      moves,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert match record %s: %w", name, err)
	}
	return nil
}

func (e *Exporter) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}
