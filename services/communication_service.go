package services

import (
	"fmt"
	"log"
	"time"

	"lexfund_crm_go/config"
	"lexfund_crm_go/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// bodyPolicy sanitizes user-supplied message bodies. UGC policy keeps
// basic formatting and strips scripts and event handlers.
var bodyPolicy = bluemonday.UGCPolicy()

// smsPolicy strips all markup; SMS bodies are plain text
var smsPolicy = bluemonday.StrictPolicy()

// SanitizeBody cleans a message body for the given channel
func SanitizeBody(channel, body string) string {
	if channel == models.ChannelSMS {
		return smsPolicy.Sanitize(body)
	}
	return bodyPolicy.Sanitize(body)
}

// RenderFromTemplate renders a message template against the given records
func RenderFromTemplate(tmpl *models.MessageTemplate, plaintiff *models.Plaintiff, caseRecord *models.Case) (subject, body string) {
	data := BuildTemplateData(plaintiff, caseRecord, nil)
	return RenderTemplate(tmpl.Subject, data), RenderTemplate(tmpl.Body, data)
}

// SendCommunication dispatches an outbound communication over its
// channel and records the outcome. On failure the record is marked
// FAILED with a reason; a later retry re-enters this same path.
func SendCommunication(db *gorm.DB, cfg *config.Config, ctx AuditContext, comm *models.Communication) error {
	if !comm.CanSend() {
		return fmt.Errorf("communication %s is not sendable (status %s, direction %s)", comm.ID, comm.Status, comm.Direction)
	}

	var plaintiff models.Plaintiff
	if err := db.First(&plaintiff, "id = ?", comm.PlaintiffID).Error; err != nil {
		return fmt.Errorf("failed to load plaintiff: %w", err)
	}

	// Stamp QUEUED before dispatch; a crash mid-send leaves the message
	// recoverable by the retry path instead of stuck in DRAFT.
	if err := db.Model(comm).Update("status", models.CommunicationStatusQueued).Error; err != nil {
		return fmt.Errorf("failed to queue communication: %w", err)
	}
	comm.Status = models.CommunicationStatusQueued

	var sendErr error
	switch comm.Channel {
	case models.ChannelEmail:
		if plaintiff.Email == "" {
			sendErr = fmt.Errorf("plaintiff has no email address")
		} else {
			sendErr = SendEmail(cfg, &Email{
				To:       []string{plaintiff.Email},
				Subject:  comm.Subject,
				HTMLBody: comm.Body,
				TextBody: smsPolicy.Sanitize(comm.Body),
			})
		}
	case models.ChannelSMS:
		if plaintiff.Phone == "" {
			sendErr = fmt.Errorf("plaintiff has no phone number")
		} else {
			sendErr = SMS.Send(&SMSMessage{To: plaintiff.Phone, Body: comm.Body})
		}
	default:
		sendErr = fmt.Errorf("unknown channel %q", comm.Channel)
	}

	if sendErr != nil {
		if dbErr := db.Model(comm).Updates(map[string]interface{}{
			"status":         models.CommunicationStatusFailed,
			"failure_reason": sendErr.Error(),
		}).Error; dbErr != nil {
			log.Printf("[WARNING] Failed to mark communication %s failed: %v", comm.ID, dbErr)
		}
		comm.Status = models.CommunicationStatusFailed
		comm.FailureReason = sendErr.Error()
		return sendErr
	}

	now := time.Now()
	if err := db.Model(comm).Updates(map[string]interface{}{
		"status":         models.CommunicationStatusSent,
		"sent_at":        now,
		"failure_reason": "",
	}).Error; err != nil {
		return fmt.Errorf("failed to mark communication sent: %w", err)
	}
	comm.Status = models.CommunicationStatusSent
	comm.SentAt = &now
	comm.FailureReason = ""

	LogAuditEvent(db, ctx, models.AuditActionSend,
		"Communication", comm.ID, comm.Subject,
		fmt.Sprintf("%s sent to plaintiff %s", comm.Channel, plaintiff.FullName()),
		nil, nil,
	)

	return nil
}

// RetryFailedCommunications re-sends every FAILED outbound message,
// along with any message stranded in QUEUED by an interrupted send.
// Used by the CLI; the API retries one message at a time.
func RetryFailedCommunications(db *gorm.DB, cfg *config.Config, ctx AuditContext) (retried, failed int, err error) {
	var comms []models.Communication
	if err := db.Where("status IN ? AND direction = ?",
		[]string{models.CommunicationStatusFailed, models.CommunicationStatusQueued},
		models.DirectionOutbound).Find(&comms).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load failed communications: %w", err)
	}

	for i := range comms {
		if sendErr := SendCommunication(db, cfg, ctx, &comms[i]); sendErr != nil {
			failed++
		} else {
			retried++
		}
	}
	return retried, failed, nil
}
