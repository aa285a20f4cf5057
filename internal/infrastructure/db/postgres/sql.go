package postgres

const (
	listExistsSQL = `SELECT 1 FROM lists WHERE id = $1`
	itemExistsSQL = `SELECT 1 FROM list_items WHERE id = $1 AND list_id = $2`

	// views
	addListViewsSQL = `UPDATE lists SET views_count = views_count + $2 WHERE id = $1`
	addItemViewsSQL = `UPDATE list_items SET views_count = views_count + $2 WHERE id = $1`
	listViewsSQL    = `SELECT views_count FROM lists WHERE id = $1`
	itemViewsSQL    = `SELECT id, views_count FROM list_items WHERE id = ANY($1)`

	// reactions
	deleteReactionSQL = `
DELETE FROM reactions
WHERE list_id = $1 AND list_item_id IS NOT DISTINCT FROM $2 AND user_id = $3 AND type = $4`
	insertReactionSQL = `
INSERT INTO reactions (list_id, list_item_id, user_id, type, created_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT DO NOTHING`
	countReactionTypeSQL = `
SELECT COUNT(*) FROM reactions
WHERE list_id = $1 AND list_item_id IS NOT DISTINCT FROM $2 AND type = $3`
	countReactionsSQL = `
SELECT type, COUNT(*) FROM reactions
WHERE list_id = $1 AND list_item_id IS NOT DISTINCT FROM $2
GROUP BY type`
	userReactionsSQL = `
SELECT type FROM reactions
WHERE list_id = $1 AND list_item_id IS NOT DISTINCT FROM $2 AND user_id = $3
ORDER BY created_at`

	// bookmarks
	deleteBookmarkSQL = `
DELETE FROM bookmarks
WHERE user_id = $1 AND list_id = $2 AND list_item_id IS NOT DISTINCT FROM $3`
	insertBookmarkSQL = `
INSERT INTO bookmarks (id, user_id, list_id, list_item_id, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`
	moveBookmarkSQL = `
UPDATE bookmarks SET collection_id = $3
WHERE id = $1 AND user_id = $2
  AND EXISTS (SELECT 1 FROM collections c WHERE c.id = $3 AND c.user_id = $2)`
	uncategorizeBookmarkSQL = `UPDATE bookmarks SET collection_id = NULL WHERE id = $1 AND user_id = $2`
	listBookmarksSQL        = `
SELECT id, user_id, list_id, list_item_id, collection_id, created_at
FROM bookmarks
WHERE user_id = $1`

	// collections
	collectionNameExistsSQL = `SELECT EXISTS (SELECT 1 FROM collections WHERE user_id = $1 AND name = $2)`
	insertCollectionSQL     = `INSERT INTO collections (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`
	getCollectionSQL        = `SELECT id, user_id, name, created_at FROM collections WHERE id = $1`
	listCollectionsSQL      = `SELECT id, user_id, name, created_at FROM collections WHERE user_id = $1 ORDER BY name`
	deleteCollectionSQL     = `DELETE FROM collections WHERE id = $1`
)
