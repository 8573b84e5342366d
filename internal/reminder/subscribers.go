package reminder

import (
	"context"
	"errors"
	"slices"

	"github.com/m3rciful/habitbot/internal/store"
)

var errNothingDue = errors.New("reminder: nothing due")

// Roster is the persisted subscriber document.
type Roster struct {
	Chats []int64 `json:"chats" yaml:"chats"`
	// LastSent maps a chat to the local date key of its last reminder.
	LastSent map[int64]string `json:"last_sent" yaml:"last_sent"`
	// Pending maps a chat whose delivery failed to the date it is owed.
	Pending map[int64]string `json:"pending,omitempty" yaml:"pending,omitempty"`
}

func defaultRoster() Roster {
	return Roster{Chats: []int64{}, LastSent: map[int64]string{}, Pending: map[int64]string{}}
}

func normalizeRoster(r *Roster) {
	if r.Chats == nil {
		r.Chats = []int64{}
	}
	if r.LastSent == nil {
		r.LastSent = map[int64]string{}
	}
	if r.Pending == nil {
		r.Pending = map[int64]string{}
	}
}

// Subscribers is the ordered set of chats that receive the reminder.
type Subscribers struct {
	doc *store.Document[Roster]
}

// NewSubscribers opens the subscriber document.
func NewSubscribers(backend store.Backend, name string) (*Subscribers, error) {
	doc, err := store.NewDocument(backend, store.DocumentOptions[Roster]{
		Name:      name,
		Default:   defaultRoster,
		Normalize: normalizeRoster,
	})
	if err != nil {
		return nil, err
	}
	return &Subscribers{doc: doc}, nil
}

// Subscribe adds chatID and reports whether it was new.
func (s *Subscribers) Subscribe(ctx context.Context, chatID int64) (bool, error) {
	r, err := s.doc.Read(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(r.Chats, chatID) {
		return false, nil
	}
	added := false
	err = s.doc.Update(ctx, func(r *Roster) error {
		if !slices.Contains(r.Chats, chatID) {
			r.Chats = append(r.Chats, chatID)
			added = true
		}
		return nil
	})
	return added, err
}

// List returns the subscribed chats in subscription order.
func (s *Subscribers) List(ctx context.Context) ([]int64, error) {
	r, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	return r.Chats, nil
}

// claim returns the chats not yet reminded on date and marks them as sent.
// force claims every chat.
func (s *Subscribers) claim(ctx context.Context, date string, force bool) ([]int64, error) {
	return s.claimWhere(ctx, date, func(r *Roster, id int64) bool {
		return force || r.LastSent[id] != date
	})
}

// claimPending returns the chats whose delivery on date failed earlier.
// Entries owed for other dates are dropped.
func (s *Subscribers) claimPending(ctx context.Context, date string) ([]int64, error) {
	return s.claimWhere(ctx, date, func(r *Roster, id int64) bool {
		owed, ok := r.Pending[id]
		return ok && owed == date && r.LastSent[id] != date
	})
}

func (s *Subscribers) claimWhere(ctx context.Context, date string, due func(r *Roster, id int64) bool) ([]int64, error) {
	var claimed []int64
	err := s.doc.Update(ctx, func(r *Roster) error {
		pruned := false
		for id, owed := range r.Pending {
			if owed != date || !slices.Contains(r.Chats, id) {
				delete(r.Pending, id)
				pruned = true
			}
		}
		for _, id := range r.Chats {
			if !due(r, id) {
				continue
			}
			r.LastSent[id] = date
			delete(r.Pending, id)
			claimed = append(claimed, id)
		}
		if len(claimed) == 0 && !pruned {
			return errNothingDue
		}
		return nil
	})
	if errors.Is(err, errNothingDue) {
		return nil, nil
	}
	return claimed, err
}

// release forgets a failed delivery and marks the chat as owed a reminder
// on date, so the retry job picks it up later that day.
func (s *Subscribers) release(ctx context.Context, chatID int64, date string) error {
	return s.doc.Update(ctx, func(r *Roster) error {
		if r.LastSent[chatID] == date {
			delete(r.LastSent, chatID)
		}
		r.Pending[chatID] = date
		return nil
	})
}
