package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesJoinEntities(t *testing.T) {
	wanted := map[string]bool{
		"article_article_categories":               false,
		"article_article_tags":                     false,
		"community_post_community_post_categories": false,
		"community_post_community_post_tags":       false,
	}
	for _, model := range PersistentModels() {
		if tabler, ok := model.(interface{ TableName() string }); ok {
			if _, tracked := wanted[tabler.TableName()]; tracked {
				wanted[tabler.TableName()] = true
			}
		}
	}
	for table, found := range wanted {
		require.True(t, found, "PersistentModels should include %s", table)
	}
}
