package commands

import "github.com/mmynk/splitsync/internal/models"

// Draft returns a copy of the current draft expense.
func (c *Commands) Draft() models.DraftExpense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyDraft(c.draft)
}

// UpdateDraft applies fn to the draft under the draft lock and returns the result.
func (c *Commands) UpdateDraft(fn func(d *models.DraftExpense)) models.DraftExpense {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
	return copyDraft(c.draft)
}

// SetTitle sets the draft title.
func (c *Commands) SetTitle(title string) {
	c.UpdateDraft(func(d *models.DraftExpense) { d.Title = title })
}

// SetAmount sets the raw draft amount. It is validated on submit.
func (c *Commands) SetAmount(amount string) {
	c.UpdateDraft(func(d *models.DraftExpense) { d.Amount = amount })
}

// SetPaidBy selects the payer.
func (c *Commands) SetPaidBy(id int64) {
	c.UpdateDraft(func(d *models.DraftExpense) { d.PaidByID = &id })
}

// ClearPaidBy reverts the payer to the default (first person).
func (c *Commands) ClearPaidBy() {
	c.UpdateDraft(func(d *models.DraftExpense) { d.PaidByID = nil })
}

// SetParticipants sets the comma-separated participant ids. Empty means everyone.
func (c *Commands) SetParticipants(ids string) {
	c.UpdateDraft(func(d *models.DraftExpense) { d.Participants = ids })
}

// ResetDraft clears every draft field.
func (c *Commands) ResetDraft() {
	c.UpdateDraft(func(d *models.DraftExpense) { *d = models.DraftExpense{} })
}

// resetDraftIfUnchanged clears the draft unless it was edited after submitted
// was taken. It reports whether the draft was cleared.
func (c *Commands) resetDraftIfUnchanged(submitted models.DraftExpense) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !sameDraft(c.draft, submitted) {
		return false
	}
	c.draft = models.DraftExpense{}
	return true
}

func sameDraft(a, b models.DraftExpense) bool {
	if a.Title != b.Title || a.Amount != b.Amount || a.Participants != b.Participants {
		return false
	}
	if a.PaidByID == nil || b.PaidByID == nil {
		return a.PaidByID == nil && b.PaidByID == nil
	}
	return *a.PaidByID == *b.PaidByID
}

func copyDraft(d models.DraftExpense) models.DraftExpense {
	if d.PaidByID != nil {
		id := *d.PaidByID
		d.PaidByID = &id
	}
	return d
}
