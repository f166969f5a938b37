package generation

import (
	"context"
	"fmt"
	"strings"

	"mediflash/config"
	"mediflash/internal/core/flashcard"
	"mediflash/pkg/logger"
)

// Pipeline chunks text, asks the backend for cards chunk by chunk and merges
// what comes back.
type Pipeline struct {
	backend   Backend
	chunkSize int
}

func NewPipeline(backend Backend, chunkSize int) *Pipeline {
	return &Pipeline{backend: backend, chunkSize: chunkSize}
}

// Generate returns at most req.Quantity cards.
func (p *Pipeline) Generate(ctx context.Context, req Request) ([]flashcard.Flashcard, error) {
	run, err := p.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return run.Cards, nil
}

// Run processes chunks strictly one after another. A chunk whose call fails
// or whose reply cannot be normalized contributes nothing; only a run that
// ends with no cards at all is an error. Once ctx is done the remaining
// chunks are recorded as failed without being sent.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Run, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	chunks := Chunk(req.Text, p.chunkSize)
	run := &Run{
		Chunks:   len(chunks),
		PerChunk: PerChunkTarget(req.Quantity, len(chunks)),
		Results:  make([]ChunkResult, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		res := p.runChunk(ctx, i, chunk, req, run.PerChunk)
		run.Results = append(run.Results, res)
		run.Cards = append(run.Cards, res.Cards...)
	}

	fields := map[string]interface{}{
		"chunks":    run.Chunks,
		"per_chunk": run.PerChunk,
		"failed":    run.Failed(),
		"cards":     len(run.Cards),
		"requested": req.Quantity,
	}
	if len(run.Cards) == 0 {
		logger.WithFields(fields).Warnf("%v: run produced no flashcards", config.ModuleGenerate)
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("%w: %w", ErrNoFlashcards, err)
		}
		return run, ErrNoFlashcards
	}
	if len(run.Cards) > req.Quantity {
		run.Cards = run.Cards[:req.Quantity]
	}
	logger.WithFields(fields).Infof("%v: run finished", config.ModuleGenerate)
	return run, nil
}

func (p *Pipeline) runChunk(ctx context.Context, index int, chunk string, req Request, count int) ChunkResult {
	res := ChunkResult{Index: index, Requested: count}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	prompt := BuildPrompt(chunk, req.Mode, req.Level, count)
	raw, err := p.backend.Generate(ctx, prompt, count)
	if err != nil {
		res.Err = fmt.Errorf("backend: %w", err)
		logger.Error(res.Err, "%v: chunk %d failed", config.ModuleGenerate, index)
		return res
	}

	ext := Normalize(raw)
	res.Strategy = ext.Strategy
	res.Cards = ext.Cards
	res.Err = ext.Err

	entry := logger.WithFields(map[string]interface{}{
		"chunk":     index,
		"requested": count,
		"produced":  len(ext.Cards),
		"skipped":   ext.Skipped,
		"strategy":  ext.Strategy,
	})
	if ext.Err != nil {
		entry.WithField("error", ext.Err.Error()).Warnf("%v: chunk reply unusable", config.ModuleGenerate)
	} else {
		entry.Debugf("%v: chunk normalized", config.ModuleGenerate)
	}
	return res
}
