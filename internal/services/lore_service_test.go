package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"tungra/internal/models"
)

func TestUpdateEntryDocumentUnsetsEmbedding(t *testing.T) {
	update := updateEntryDocument(&models.UpdateLoreRequest{
		Title:       "The Sundered Gate",
		Description: "A broken portal in the northern wastes.",
	})

	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatal("Edit must drop the stored embedding alongside the text change")
	}
	if _, ok := unset["plot_embedding_hf"]; !ok {
		t.Error("Expected plot_embedding_hf to be unset on edit")
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("Expected $set document")
	}
	if set["original_title"] != "The Sundered Gate" {
		t.Errorf("Unexpected original_title: %v", set["original_title"])
	}
	if set["title"] != "TheSunderedGate" {
		t.Errorf("Expected whitespace-stripped title, got %v", set["title"])
	}
	if _, ok := set["plot_embedding_hf"]; ok {
		t.Error("Embedding must not be written by the text update itself")
	}
}
