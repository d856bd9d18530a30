package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/apresai/koreanpodcast/internal/script"
)

const defaultBatchConcurrency = 3

// BatchResult pairs a turn's synthesis outcome with any unrecoverable
// error, so the caller can keep going and mark the turn for resynthesis
// instead of aborting the whole batch.
type BatchResult struct {
	TurnID  string
	Result  TTSSynthesisResult
	Err     error
	Warning string
}

// VoiceForSpeaker resolves which VoiceProfile a turn uses out of a fixed
// two-host assignment.
type VoiceForSpeaker func(speaker script.Speaker) VoiceProfile

// SynthesizeBatch runs turns through adapter in fixed-size groups, each
// group fully parallel and groups run sequentially, per the concurrency
// cap (default 3). A request that exhausts WithRetry's attempts does not
// abort the batch: its BatchResult carries the error and a warning, and
// synthesis continues with the remaining turns.
func SynthesizeBatch(ctx context.Context, adapter TTSAdapter, turns []script.ScriptTurn, voiceFor VoiceForSpeaker, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	results := make([]BatchResult, len(turns))
	for start := 0; start < len(turns); start += concurrency {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		end := start + concurrency
		if end > len(turns) {
			end = len(turns)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				turn := turns[idx]
				voice := voiceFor(turn.Speaker)

				res, err := adapter.SynthesizeTurn(ctx, turn, voice)
				if err != nil {
					results[idx] = BatchResult{
						TurnID:  turn.ID,
						Err:     err,
						Warning: fmt.Sprintf("turn %s unrecoverable after retries: %v; marked for resynthesis", turn.ID, err),
					}
					return
				}
				results[idx] = BatchResult{TurnID: turn.ID, Result: res}
			}(i)
		}
		wg.Wait()
	}

	return results, nil
}

// FailedTurnIDs returns the turn ids whose batch entry carries an
// unrecoverable error, for QA/regeneration to target.
func FailedTurnIDs(results []BatchResult) []string {
	var ids []string
	for _, r := range results {
		if r.Err != nil {
			ids = append(ids, r.TurnID)
		}
	}
	return ids
}
