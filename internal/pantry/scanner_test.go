package pantry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"pantrychef/internal/recipe"
)

// fakeVision returns canned model output.
type fakeVision struct {
	response       string
	err            error
	receivedFormat string
}

func (v *fakeVision) GenerateFromImage(ctx context.Context, prompt, format string, imageData []byte) (string, error) {
	v.receivedFormat = format
	if v.err != nil {
		return "", v.err
	}
	return v.response, nil
}

func TestScan(t *testing.T) {
	vision := &fakeVision{response: "```json\n[{\"name\": \"Cheddar Cheese\", \"quantity\": \"200g\", \"confidence\": 0.92}, {\"name\": \"Eggs\", \"quantity\": \"6 eggs\", \"confidence\": 0.99}]\n```"}
	scanner := NewScanner(vision, zap.NewNop())

	ingredients, err := scanner.Scan(context.Background(), "jpeg", []byte("photo"))

	assert.NoError(t, err)
	assert.Len(t, ingredients, 2)
	assert.Equal(t, "Cheddar Cheese", ingredients[0].Name)
	assert.Equal(t, 0.92, ingredients[0].Confidence)
	assert.Equal(t, "jpeg", vision.receivedFormat)
}

func TestScan_CapsItemCount(t *testing.T) {
	var entries []string
	for i := 0; i < 30; i++ {
		entries = append(entries, fmt.Sprintf("{\"name\": \"Item %d\", \"quantity\": \"1\", \"confidence\": 0.9}", i))
	}
	vision := &fakeVision{response: "[" + strings.Join(entries, ",") + "]"}
	scanner := NewScanner(vision, zap.NewNop())

	ingredients, err := scanner.Scan(context.Background(), "png", []byte("photo"))

	assert.NoError(t, err)
	assert.Len(t, ingredients, 20)
}

func TestScan_MalformedResponse(t *testing.T) {
	vision := &fakeVision{response: "I see some vegetables and a jar of something."}
	scanner := NewScanner(vision, zap.NewNop())

	_, err := scanner.Scan(context.Background(), "jpeg", []byte("photo"))
	assert.ErrorIs(t, err, recipe.ErrGenerationParse)
}

func TestScan_EmptyResult(t *testing.T) {
	vision := &fakeVision{response: "[]"}
	scanner := NewScanner(vision, zap.NewNop())

	_, err := scanner.Scan(context.Background(), "jpeg", []byte("photo"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no ingredients detected")
}

func TestScan_VisionFailure(t *testing.T) {
	vision := &fakeVision{err: errors.New("model overloaded")}
	scanner := NewScanner(vision, zap.NewNop())

	_, err := scanner.Scan(context.Background(), "jpeg", []byte("photo"))
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	items := []*Item{
		{Name: "Rice"},
		{Name: "Eggs"},
	}
	assert.Equal(t, []string{"Rice", "Eggs"}, Names(items))
	assert.Empty(t, Names(nil))
}
