package natsx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

// Requester is the subset of *nats.Conn used for request/reply.
type Requester interface {
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
}

type permissionRequest struct {
	Query string `json:"query"`
}

type permissionReply struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PermissionClient asks the device channel for its notification
// authorization over NATS request/reply.
type PermissionClient struct {
	req     Requester
	subject string
}

var _ tagbridge.PermissionChecker = (*PermissionClient)(nil)

func NewPermissionClient(req Requester, subject string) *PermissionClient {
	return &PermissionClient{req: req, subject: subject}
}

// NotificationAuthorization blocks until a reply arrives or ctx is done.
func (p *PermissionClient) NotificationAuthorization(ctx context.Context) (tagbridge.AuthorizationStatus, error) {
	body, err := json.Marshal(permissionRequest{Query: "notification_authorization"})
	if err != nil {
		return "", err
	}
	msg, err := p.req.RequestWithContext(ctx, p.subject, body)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", p.subject, err)
	}

	var reply permissionReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != "" {
		return "", fmt.Errorf("device channel: %s", reply.Error)
	}
	return tagbridge.ParseAuthorizationStatus(reply.Status), nil
}
