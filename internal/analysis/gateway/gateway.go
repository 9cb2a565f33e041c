// Package gateway performs the outbound reasoning call and normalizes its
// outcome: one assistant message, errx.ErrEmptyUpstreamResponse, or an
// *errx.UpstreamError. Gateways never touch conversation state.
package gateway

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
)

type Gateway interface {
	Send(ctx context.Context, payload request.Payload) (*schema.Message, error)
}
