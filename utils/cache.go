package utils

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisFolderIndex keeps the set of distinct folder paths per user in a
// Redis set, so listing does not rescan every record per request. Uploads
// add the new folder to the set; deletes drop the whole set, which is
// rebuilt from the database on the next miss. A folder therefore only
// exists while at least one record carries it.
type RedisFolderIndex struct {
	client *redis.Client
}

// NewRedisFolderIndex creates a folder index backed by Redis.
func NewRedisFolderIndex(client *redis.Client) *RedisFolderIndex {
	return &RedisFolderIndex{client: client}
}

func folderIndexKey(userID uint64) string {
	return fmt.Sprintf("gallery:folders:%d", userID)
}

// Members returns the cached folder set, with ok=false on a miss or error.
func (f *RedisFolderIndex) Members(ctx context.Context, userID uint64) ([]string, bool) {
	if f == nil || f.client == nil {
		return nil, false
	}
	key := folderIndexKey(userID)
	exists, err := f.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return nil, false
	}
	members, err := f.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	return members, true
}

// Prime replaces the folder set with the given values.
func (f *RedisFolderIndex) Prime(ctx context.Context, userID uint64, folders []string) error {
	if f == nil || f.client == nil {
		return nil
	}
	key := folderIndexKey(userID)
	pipe := f.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(folders) > 0 {
		args := make([]interface{}, 0, len(folders))
		for _, folder := range folders {
			args = append(args, folder)
		}
		pipe.SAdd(ctx, key, args...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Add records one folder path after a successful upload.
func (f *RedisFolderIndex) Add(ctx context.Context, userID uint64, folder string) error {
	if f == nil || f.client == nil {
		return nil
	}
	key := folderIndexKey(userID)
	exists, err := f.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		// Nothing cached yet; the next list rebuilds from the database.
		return err
	}
	return f.client.SAdd(ctx, key, folder).Err()
}

// Invalidate drops the folder set after deletes.
func (f *RedisFolderIndex) Invalidate(ctx context.Context, userID uint64) error {
	if f == nil || f.client == nil {
		return nil
	}
	return f.client.Del(ctx, folderIndexKey(userID)).Err()
}
