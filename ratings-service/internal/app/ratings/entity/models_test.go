package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingBucket_Key(t *testing.T) {
	bucket := RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"}
	assert.Equal(t, "game-1:proj-1:ru", bucket.Key())
}

func TestRatingBucket_Key_SeparatorInIDsDoesNotCollide(t *testing.T) {
	// Разделитель внутри ID не должен склеивать два разных бакета:
	// иначе кеш одного бакета отдавался бы за другой
	first := RatingBucket{GameID: "game:1", ProjectID: "proj", Locale: "ru"}
	second := RatingBucket{GameID: "game", ProjectID: "1:proj", Locale: "ru"}
	assert.NotEqual(t, first.Key(), second.Key())

	third := RatingBucket{GameID: `game\`, ProjectID: ":proj", Locale: "ru"}
	fourth := RatingBucket{GameID: "game", ProjectID: `\:proj`, Locale: "ru"}
	assert.NotEqual(t, third.Key(), fourth.Key())
}

func TestCommentStatus_IsModerationTarget(t *testing.T) {
	assert.True(t, CommentStatusApproved.IsModerationTarget())
	assert.True(t, CommentStatusRejected.IsModerationTarget())
	assert.True(t, CommentStatusSpam.IsModerationTarget())
	assert.False(t, CommentStatusPending.IsModerationTarget())
	assert.False(t, CommentStatus("deleted").IsModerationTarget())
}
