// Package evaluation computes offline metrics over recorded dialogues:
// turn statistics, per-participant intent distributions and a scalar reward.
package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// SatisfactionClassifier scores a whole dialogue transcript.
type SatisfactionClassifier interface {
	Classify(ctx context.Context, text string) (int, error)
}

// RewardConfig parameterizes the reward computation.
type RewardConfig struct {
	// FullSetPoints is the reward before deductions when every required
	// intent occurred.
	FullSetPoints float64
	// Penalties maps required intent labels to the deduction applied when
	// the dialogue never realizes them.
	Penalties map[string]float64
	// TurnCost is deducted per user turn.
	TurnCost float64
}

// Metrics aggregates the evaluation of one set of dialogues.
type Metrics struct {
	Dialogues int
	// AvgTurns is the mean number of user-agent turn pairs per dialogue.
	AvgTurns float64
	// IntentCounts maps participant, then intent label, to occurrence count.
	IntentCounts map[dialogue.Participant]map[string]int
	// IntentRatios maps participant, then intent label, to its share of that
	// participant's intents.
	IntentRatios map[dialogue.Participant]map[string]float64
	// AvgReward is the mean per-dialogue reward.
	AvgReward float64
	// AvgSatisfaction is the mean per-dialogue satisfaction score; zero
	// when no classifier was configured.
	AvgSatisfaction float64
}

// Evaluator computes metrics over dialogue lists.
type Evaluator struct {
	reward       RewardConfig
	satisfaction SatisfactionClassifier
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithSatisfaction attaches a satisfaction classifier; its score is averaged
// into the metrics per dialogue.
func WithSatisfaction(s SatisfactionClassifier) EvaluatorOption {
	return func(e *Evaluator) { e.satisfaction = s }
}

// NewEvaluator creates an evaluator with the given reward configuration.
func NewEvaluator(reward RewardConfig, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{reward: reward}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the aggregate metrics of the dialogues.
func (e *Evaluator) Evaluate(ctx context.Context, dialogues []*dialogue.Dialogue) (*Metrics, error) {
	m := &Metrics{
		Dialogues:    len(dialogues),
		IntentCounts: make(map[dialogue.Participant]map[string]int),
		IntentRatios: make(map[dialogue.Participant]map[string]float64),
	}
	if len(dialogues) == 0 {
		return m, nil
	}

	var totalTurns, totalReward, totalSatisfaction float64
	for _, d := range dialogues {
		totalTurns += float64(turnPairs(d))
		countIntents(d, m.IntentCounts)
		totalReward += e.Reward(d)

		if e.satisfaction != nil {
			score, err := e.satisfaction.Classify(ctx, transcript(d))
			if err != nil {
				return nil, fmt.Errorf("classify satisfaction: %w", err)
			}
			totalSatisfaction += float64(score)
		}
	}

	n := float64(len(dialogues))
	m.AvgTurns = totalTurns / n
	m.AvgReward = totalReward / n
	if e.satisfaction != nil {
		m.AvgSatisfaction = totalSatisfaction / n
	}
	for p, counts := range m.IntentCounts {
		var total int
		for _, c := range counts {
			total += c
		}
		ratios := make(map[string]float64, len(counts))
		for label, c := range counts {
			ratios[label] = float64(c) / float64(total)
		}
		m.IntentRatios[p] = ratios
	}

	logx.Debug().Int("dialogues", m.Dialogues).Float64("avg_reward", m.AvgReward).
		Msg("dialogues evaluated")
	return m, nil
}

// Reward scores one dialogue: the full-set points minus a penalty per
// required intent the dialogue never realizes, minus one point per repeat,
// minus the per-turn cost of every user turn, floored at zero.
func (e *Evaluator) Reward(d *dialogue.Dialogue) float64 {
	realized := make(map[string]struct{})
	var userTurns int
	for _, u := range d.Utterances() {
		if u.Participant() == dialogue.ParticipantUser {
			userTurns++
		}
		for _, label := range utteranceIntents(u) {
			realized[label] = struct{}{}
		}
	}

	reward := e.reward.FullSetPoints
	for label, penalty := range e.reward.Penalties {
		if _, ok := realized[label]; !ok {
			reward -= penalty
		}
	}
	reward -= float64(RepeatCount(d))
	reward -= float64(userTurns) * e.reward.TurnCost
	if reward < 0 {
		return 0
	}
	return reward
}

// RepeatCount counts the adjacent utterance pairs with the same participant
// and the same intent, scanning from the first agent utterance.
func RepeatCount(d *dialogue.Dialogue) int {
	utterances := d.Utterances()
	start := -1
	for i, u := range utterances {
		if u.Participant() == dialogue.ParticipantAgent {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}

	var repeats int
	for i := start + 1; i < len(utterances); i++ {
		prev, cur := utterances[i-1], utterances[i]
		if prev.Participant() != cur.Participant() {
			continue
		}
		if prev.Intent() != nil && prev.Intent().Equal(cur.Intent()) {
			repeats++
		}
	}
	return repeats
}

// turnPairs is the number of user-agent exchange pairs.
func turnPairs(d *dialogue.Dialogue) int {
	var user, agent int
	for _, u := range d.Utterances() {
		if u.Participant() == dialogue.ParticipantUser {
			user++
		} else {
			agent++
		}
	}
	if user < agent {
		return user
	}
	return agent
}

// countIntents tallies intents per participant, counting dialogue-act
// intents when present and falling back to the utterance intent.
func countIntents(d *dialogue.Dialogue, into map[dialogue.Participant]map[string]int) {
	for _, u := range d.Utterances() {
		labels := utteranceIntents(u)
		if len(labels) == 0 {
			continue
		}
		p := u.Participant()
		if into[p] == nil {
			into[p] = make(map[string]int)
		}
		for _, label := range labels {
			into[p][label]++
		}
	}
}

func utteranceIntents(u *dialogue.AnnotatedUtterance) []string {
	if acts := u.DialogueActs(); len(acts) > 0 {
		labels := make([]string, 0, len(acts))
		for _, act := range acts {
			if act.Intent != nil {
				labels = append(labels, act.Intent.Label())
			}
		}
		return labels
	}
	if u.Intent() != nil {
		return []string{u.Intent().Label()}
	}
	return nil
}

func transcript(d *dialogue.Dialogue) string {
	var b strings.Builder
	for _, u := range d.Utterances() {
		b.WriteString(string(u.Participant()))
		b.WriteString(": ")
		b.WriteString(u.Text())
		b.WriteByte('\n')
	}
	return b.String()
}
