package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

const suggestionStoreName = "suggestions"

type todoCreator interface {
	CreateTodo(ctx context.Context, req request.TodoRequest) response.Result[domain.Todo]
}

// SuggestionFlow drives the "suggest todos" interaction: load candidates,
// toggle a selection, then add the selection one todo at a time.
type SuggestionFlow struct {
	api       port.TodoAPI
	todos     todoCreator
	telemetry port.Telemetry
	logger    *zap.Logger

	mu         sync.RWMutex
	candidates []domain.Suggestion
	message    string
	selected   []int
	loading    bool
	adding     bool
	done       bool
	err        error
}

func NewSuggestionFlow(api port.TodoAPI, todos todoCreator, telemetry port.Telemetry, logger *zap.Logger) *SuggestionFlow {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &SuggestionFlow{
		api:       api,
		todos:     todos,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Request loads a fresh batch of candidates and clears any previous
// selection.
func (sf *SuggestionFlow) Request(ctx context.Context) response.Result[domain.SuggestionBatch] {
	ctx, span := sf.telemetry.StartStoreSpan(ctx, suggestionStoreName, "request", nil)
	defer span.End()

	startTime := time.Now()

	sf.mu.Lock()
	if sf.adding {
		sf.mu.Unlock()
		err := domain.NewValidationError("suggestions.request", "Suggestions are being added")
		return response.Fail[domain.SuggestionBatch](err, "")
	}
	sf.candidates = nil
	sf.message = ""
	sf.selected = nil
	sf.loading = true
	sf.done = false
	sf.err = nil
	sf.mu.Unlock()

	batch, err := sf.api.Suggestions(ctx)

	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.loading = false

	if err != nil {
		sf.err = err
		span.RecordError(err)
		sf.telemetry.RecordStoreOperation(ctx, suggestionStoreName, "request", time.Since(startTime), err)
		return response.Fail[domain.SuggestionBatch](err, "Failed to get suggestions")
	}

	sf.candidates = batch.Suggestions
	sf.message = batch.Message

	span.SetAttributes(map[string]interface{}{"suggestions.count": len(batch.Suggestions)})
	sf.telemetry.RecordStoreOperation(ctx, suggestionStoreName, "request", time.Since(startTime), nil)

	return response.Ok(batch)
}

// Toggle adds i to the selection, or removes it if already selected.
// It reports whether i is selected afterwards.
func (sf *SuggestionFlow) Toggle(i int) bool {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.adding || i < 0 || i >= len(sf.candidates) {
		return slices.Contains(sf.selected, i)
	}

	if pos := slices.Index(sf.selected, i); pos >= 0 {
		sf.selected = slices.Delete(sf.selected, pos, pos+1)
		return false
	}

	sf.selected = append(sf.selected, i)
	return true
}

// AddSelected creates one todo per selected candidate, in selection order,
// waiting for each before the next. The first failure stops the loop; todos
// already created stay created and drop out of the selection.
func (sf *SuggestionFlow) AddSelected(ctx context.Context) response.Result[[]domain.Todo] {
	ctx, span := sf.telemetry.StartStoreSpan(ctx, suggestionStoreName, "add_selected", nil)
	defer span.End()

	startTime := time.Now()

	sf.mu.Lock()
	if sf.adding {
		sf.mu.Unlock()
		err := domain.NewValidationError("suggestions.add", "Suggestions are already being added")
		return response.Fail[[]domain.Todo](err, "")
	}

	if len(sf.selected) == 0 {
		sf.mu.Unlock()
		err := domain.NewValidationError("suggestions.add", "Select at least one suggestion")
		return response.Fail[[]domain.Todo](err, "")
	}

	selection := slices.Clone(sf.selected)
	candidates := slices.Clone(sf.candidates)
	sf.adding = true
	sf.err = nil
	sf.mu.Unlock()

	added := make([]domain.Todo, 0, len(selection))
	committed := make([]int, 0, len(selection))

	var failure response.Result[domain.Todo]
	failed := false

	for _, index := range selection {
		if index < 0 || index >= len(candidates) {
			continue
		}

		suggestion := candidates[index]

		result := sf.todos.CreateTodo(ctx, request.TodoRequest{
			Title:       suggestion.Title,
			Description: domain.NullableText(suggestion.Description),
			Completed:   false,
		})

		if !result.Success {
			failure = result
			failed = true
			break
		}

		added = append(added, result.Data)
		committed = append(committed, index)
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.adding = false
	sf.selected = slices.DeleteFunc(sf.selected, func(i int) bool {
		return slices.Contains(committed, i)
	})

	span.SetAttributes(map[string]interface{}{
		"suggestions.selected": len(selection),
		"suggestions.added":    len(added),
	})

	if failed {
		sf.err = failure.Err
		span.RecordError(failure.Err)
		sf.telemetry.RecordStoreOperation(ctx, suggestionStoreName, "add_selected", time.Since(startTime), failure.Err)
		sf.logger.Warn("Adding suggestions stopped early",
			zap.Int("added", len(added)),
			zap.Int("selected", len(selection)),
			zap.String("message", failure.Message))

		return response.Result[[]domain.Todo]{
			Success: false,
			Data:    added,
			Message: failure.Message,
			Err:     failure.Err,
		}
	}

	sf.done = true
	sf.telemetry.RecordStoreOperation(ctx, suggestionStoreName, "add_selected", time.Since(startTime), nil)

	return response.Ok(added)
}

// Close resets the flow. It is refused while an add is in flight.
func (sf *SuggestionFlow) Close() bool {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.adding {
		return false
	}

	sf.candidates = nil
	sf.message = ""
	sf.selected = nil
	sf.loading = false
	sf.done = false
	sf.err = nil

	return true
}

func (sf *SuggestionFlow) Candidates() []domain.Suggestion {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return slices.Clone(sf.candidates)
}

func (sf *SuggestionFlow) Selected() []int {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return slices.Clone(sf.selected)
}

func (sf *SuggestionFlow) IsSelected(i int) bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return slices.Contains(sf.selected, i)
}

func (sf *SuggestionFlow) Message() string {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.message
}

func (sf *SuggestionFlow) Loading() bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.loading
}

func (sf *SuggestionFlow) Adding() bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.adding
}

// Done is true after every selected candidate was added.
func (sf *SuggestionFlow) Done() bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.done
}

func (sf *SuggestionFlow) Error() error {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.err
}
