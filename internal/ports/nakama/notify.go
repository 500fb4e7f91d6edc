package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"castlebattle/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

var notificationCodes = map[app.EventKind]int{
	app.EventMatchCreated:   NotifyMatchCreated,
	app.EventCampDeployed:   NotifyCampDeployed,
	app.EventMatchStarted:   NotifyMatchStarted,
	app.EventTurnResolved:   NotifyTurnResolved,
	app.EventResponseOpened: NotifyResponseOpened,
	app.EventMatchFinished:  NotifyMatchFinished,
	app.EventSupplyResolved: NotifySupplyResolved,
}

// dispatch delivers committed events as non-persistent notifications. Failures are logged only.
func (m *Module) dispatch(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, events []app.Event) {
	if !m.notify || nk == nil {
		return
	}
	for _, ev := range events {
		code, ok := notificationCodes[ev.Kind]
		if !ok {
			logger.Warn("No notification code for event %s", ev.Kind)
			continue
		}
		content, err := notificationContent(ev.Payload)
		if err != nil {
			logger.Error("Failed to encode %s: %v", ev.Kind, err)
			continue
		}
		for _, userID := range ev.Recipients {
			if err := nk.NotificationSend(ctx, userID, string(ev.Kind), content, code, "", false); err != nil {
				logger.WithField("user_id", userID).Error("Failed to send %s: %v", ev.Kind, err)
			}
		}
	}
}

func notificationContent(payload any) (map[string]interface{}, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	var content map[string]interface{}
	if err := json.Unmarshal(b, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return content, nil
}
