// Package worker mirrors rewards activity events into a spreadsheet.
// Messages carry the full row data, so the worker never reads the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"premi/internal/amqp"
	"premi/internal/sheets"
)

type MirrorWorker struct {
	writer sheets.ActivityWriter
}

func NewMirrorWorker(writer sheets.ActivityWriter) *MirrorWorker {
	return &MirrorWorker{writer: writer}
}

var _ amqp.ActivityHandler = (*MirrorWorker)(nil)

func (w *MirrorWorker) HandleSpinRecorded(ctx context.Context, msg *amqp.SpinRecordedMessage) error {
	row := sheets.ActivityRow{
		Kind:    sheets.KindSpin,
		RefID:   msg.PrizeID,
		Label:   spinLabel(msg),
		Points:  msg.PointsWon,
		Balance: msg.Balance,
		At:      msg.At,
	}
	return w.append(ctx, row)
}

func (w *MirrorWorker) HandleRedemptionRecorded(ctx context.Context, msg *amqp.RedemptionRecordedMessage) error {
	row := sheets.ActivityRow{
		Kind:    sheets.KindRedemption,
		RefID:   msg.ItemID,
		Label:   msg.ItemID,
		Points:  -msg.PricePaid,
		Balance: msg.Balance,
		At:      msg.At,
	}
	return w.append(ctx, row)
}

func (w *MirrorWorker) HandleGoalCompleted(ctx context.Context, msg *amqp.GoalCompletedMessage) error {
	row := sheets.ActivityRow{
		Kind:    sheets.KindGoal,
		RefID:   msg.GoalID,
		Label:   msg.Title,
		Points:  msg.PointsReward,
		Balance: msg.Balance,
		At:      msg.At,
	}
	return w.append(ctx, row)
}

func (w *MirrorWorker) append(ctx context.Context, row sheets.ActivityRow) error {
	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append %s row: %w", row.Kind, err)
	}

	slog.InfoContext(ctx, "Mirrored activity row",
		"kind", row.Kind,
		"ref_id", row.RefID,
		"points", row.Points,
		"sheets_ref", ref)

	return nil
}

func spinLabel(msg *amqp.SpinRecordedMessage) string {
	if msg.FreeSpin {
		return fmt.Sprintf("%s (free spin)", msg.PrizeID)
	}
	return msg.PrizeID
}
