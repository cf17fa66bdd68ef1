package videocall

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps rooms in redis so every API instance sees the same
// provisioning state. Keys outlive the room's logical expiry so a lookup
// shortly after expiry still reports "gone" rather than "never existed".
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, roomTTL time.Duration) *RedisStore {
	if roomTTL <= 0 {
		roomTTL = 4 * time.Hour
	}
	return &RedisStore{redis: redisClient, ttl: 2 * roomTTL}
}

func apptKey(appointmentID string) string {
	return fmt.Sprintf("videocall:appt:%s", appointmentID)
}

func roomKey(roomID string) string {
	return fmt.Sprintf("videocall:room:%s", roomID)
}

func (s *RedisStore) Save(ctx context.Context, room *Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("videocall: marshal room: %w", err)
	}

	// A replacement room invalidates the old room id.
	if prev, err := s.redis.Get(ctx, apptKey(room.AppointmentID)).Bytes(); err == nil {
		var old Room
		if json.Unmarshal(prev, &old) == nil && old.RoomID != "" && old.RoomID != room.RoomID {
			if err := s.redis.Del(ctx, roomKey(old.RoomID)).Err(); err != nil {
				return fmt.Errorf("videocall: drop stale room index: %w", err)
			}
		}
	}

	if err := s.redis.Set(ctx, apptKey(room.AppointmentID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("videocall: save room: %w", err)
	}
	if err := s.redis.Set(ctx, roomKey(room.RoomID), room.AppointmentID, s.ttl).Err(); err != nil {
		return fmt.Errorf("videocall: save room index: %w", err)
	}
	return nil
}

func (s *RedisStore) GetByAppointment(ctx context.Context, appointmentID string) (*Room, error) {
	data, err := s.redis.Get(ctx, apptKey(appointmentID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("videocall: get room: %w", err)
	}

	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("videocall: unmarshal room: %w", err)
	}
	return &room, nil
}

func (s *RedisStore) GetByRoomID(ctx context.Context, roomID string) (*Room, error) {
	appointmentID, err := s.redis.Get(ctx, roomKey(roomID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("videocall: get room index: %w", err)
	}
	return s.GetByAppointment(ctx, appointmentID)
}
