package questionbank

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"quizroyale/internal/model"
)

const (
	// DatabaseName is the MongoDB database holding the question bank.
	DatabaseName = "quizroyale"
	// CollectionName is the collection holding question documents.
	CollectionName = "questions"
)

// LoadMongo reads the full question collection once at startup. The bank is
// static content; nothing is written back during play.
func LoadMongo(ctx context.Context, client *mongo.Client) (*Bank, error) {
	coll := client.Database(DatabaseName).Collection(CollectionName)

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	return New(questions)
}
