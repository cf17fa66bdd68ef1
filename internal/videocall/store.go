package videocall

import (
	"context"
	"sync"
)

// RoomStore persists provisioned rooms, addressable by appointment or by
// room id.
type RoomStore interface {
	Save(ctx context.Context, room *Room) error
	GetByAppointment(ctx context.Context, appointmentID string) (*Room, error)
	GetByRoomID(ctx context.Context, roomID string) (*Room, error)
}

// MemoryStore is the in-process RoomStore used in development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byAppt map[string]*Room
	byRoom map[string]string // roomID -> appointmentID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byAppt: make(map[string]*Room),
		byRoom: make(map[string]string),
	}
}

func (s *MemoryStore) Save(ctx context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A replacement room invalidates the old room id.
	if old, ok := s.byAppt[room.AppointmentID]; ok && old.RoomID != room.RoomID {
		delete(s.byRoom, old.RoomID)
	}

	c := *room
	s.byAppt[room.AppointmentID] = &c
	s.byRoom[room.RoomID] = room.AppointmentID
	return nil
}

func (s *MemoryStore) GetByAppointment(ctx context.Context, appointmentID string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.byAppt[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *room
	return &c, nil
}

func (s *MemoryStore) GetByRoomID(ctx context.Context, roomID string) (*Room, error) {
	s.mu.RLock()
	apptID, ok := s.byRoom[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetByAppointment(ctx, apptID)
}
