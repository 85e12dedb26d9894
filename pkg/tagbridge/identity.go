package tagbridge

import (
	"context"
	"fmt"
)

func (b *Bridge) changeUser(_ context.Context, params Bag) error {
	userID, ok := params.String(KeyExternalUserID)
	if !ok || userID == "" {
		return fmt.Errorf("%s=%v: %w", KeyExternalUserID, params[KeyExternalUserID], ErrMissingField)
	}
	// Tag templates render unset variables as these literals.
	if userID == "undefined" || userID == "null" {
		return fmt.Errorf("%s=%q is a placeholder: %w", KeyExternalUserID, userID, ErrFormatInvalid)
	}

	b.sink.ChangeUser(userID)
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: user changed to %s", userID)
	return nil
}
