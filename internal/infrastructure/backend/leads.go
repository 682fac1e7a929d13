package backend

import (
	"context"
	"net/http"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// UploadLeadsCSV streams a CSV file for bulk import.
func (c *Client) UploadLeadsCSV(ctx context.Context, file ports.Upload) (*domain.UploadResult, error) {
	var out domain.UploadResult
	if err := c.upload(ctx, "/upload_leads_csv/", "/upload_leads_csv/", file, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return getList[domain.Lead](ctx, c, "/leads/", "/leads/", nil)
}

func (c *Client) SetLeadStatus(ctx context.Context, leadID int64, status string) (*domain.Lead, error) {
	var out domain.Lead
	err := c.sendJSON(ctx, http.MethodPost, "/leads/{id}/set_status/", idPath("/leads/%d/set_status/", leadID),
		map[string]string{"status": status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadIndicatorProof(ctx context.Context, leadID int64, file ports.Upload, notes string) (*domain.IndicatorProof, error) {
	var out domain.IndicatorProof
	err := c.upload(ctx, "/leads/{id}/indicator_upload/", idPath("/leads/%d/indicator_upload/", leadID),
		file, map[string]string{"notes": notes}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateFollowUp(ctx context.Context, leadID int64, scheduledDate, notes string) (*domain.FollowUp, error) {
	var out domain.FollowUp
	body := map[string]string{"scheduled_date": scheduledDate, "notes": notes}
	err := c.sendJSON(ctx, http.MethodPost, "/leads/{id}/followups/", idPath("/leads/%d/followups/", leadID), body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFollowUps(ctx context.Context) ([]domain.FollowUp, error) {
	return getList[domain.FollowUp](ctx, c, "/followups/", "/followups/", nil)
}

func (c *Client) CreateAccountOpening(ctx context.Context, leadID int64, depositAmount domain.Amount, notes string) (*domain.AccountOpening, error) {
	var out domain.AccountOpening
	body := map[string]any{"lead": leadID, "deposit_amount": depositAmount, "notes": notes}
	if err := c.sendJSON(ctx, http.MethodPost, "/account_openings/", "/account_openings/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
