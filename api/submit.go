package api

import (
	"context"
	"net/http"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/unlock"
)

// SubmitResult is the API's verdict on a quiz attempt
type SubmitResult struct {
	Accepted bool    `json:"accepted"`
	Score    float64 `json:"score"`
	Message  string  `json:"message,omitempty"`
	// Mock is set when the verdict came from the built-in fallback
	Mock bool `json:"-"`
}

type submitRequest struct {
	QuizID  string `json:"quizId"`
	Answers []int  `json:"answers"`
}

func (c *Client) submit(ctx context.Context, quizID string, answers []int) (SubmitResult, error) {
	var result SubmitResult
	err := c.do(ctx, http.MethodPost, "/quiz/submit", submitRequest{QuizID: quizID, Answers: answers}, &result)
	return result, err
}

// SubmitQuiz sends answers for grading. On failure the answer is a mock
// acceptance, matching the locally evaluated flow.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers []int) SubmitResult {
	result, err := c.submit(ctx, quizID, answers)
	if err != nil {
		c.fallback("submit_quiz", err)
		return SubmitResult{Accepted: true, Message: "graded locally", Mock: true}
	}
	return result
}

// Confirm implements unlock.Confirmer. A verdict of accepted=false rejects the
// unlock; failing to reach the API is reported as a plain error, which keeps it.
func (c *Client) Confirm(ctx context.Context, quizID string, answers []int) error {
	result, err := c.submit(ctx, quizID, answers)
	if err != nil {
		return err
	}
	if !result.Accepted {
		c.log.Infow("Quiz result rejected by API",
			logger.FieldQuizID, quizID,
			logger.FieldScore, result.Score,
		)
		return errors.Wrapf(unlock.ErrRejected, "quiz %s: %s", quizID, result.Message)
	}
	return nil
}

var _ unlock.Confirmer = (*Client)(nil)
