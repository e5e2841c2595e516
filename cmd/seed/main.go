package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizroyale/internal/model"
	"quizroyale/internal/questionbank"
)

// Seeds the question bank collection from a JSON file. Existing documents
// are dropped first, so the file is the full source of truth.
func main() {
	file := flag.String("file", "questions.json", "question JSON file to load")
	flag.Parse()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *file, err)
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		log.Fatalf("failed to parse %s: %v", *file, err)
	}
	if len(questions) == 0 {
		log.Fatal("no questions to seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(questionbank.DatabaseName).Collection(questionbank.CollectionName)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("failed to clear questions: %v", err)
	}

	docs := make([]interface{}, 0, len(questions))
	for _, q := range questions {
		if !q.Valid() {
			log.Printf("skipping invalid question %d", q.ID)
			continue
		}
		docs = append(docs, q)
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		log.Fatalf("failed to insert questions: %v", err)
	}
	log.Printf("seeded %d questions", len(res.InsertedIDs))
}
