package postgres

const (
	queryAppendMessage = `
		INSERT INTO messages (from_user, to_user, text)
		VALUES ($1, $2, $3)
		RETURNING id, from_user, to_user, text, read, created_at;
	`

	queryCountConversation = `
		SELECT COUNT(*)
		FROM messages
		WHERE (from_user = $1 AND to_user = $2)
		   OR (from_user = $2 AND to_user = $1);
	`

	// Newest-anchored page; callers reverse it for oldest-first display.
	queryConversationPage = `
		SELECT id, from_user, to_user, text, read, created_at
		FROM messages
		WHERE (from_user = $1 AND to_user = $2)
		   OR (from_user = $2 AND to_user = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4;
	`

	queryMarkRead = `
		UPDATE messages
		SET read = TRUE
		WHERE from_user = $1 AND to_user = $2 AND read = FALSE;
	`

	queryLatestRead = `
		SELECT id, from_user, to_user, text, read, created_at
		FROM messages
		WHERE from_user = $1 AND to_user = $2 AND read = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $3;
	`

	queryCounterparts = `
		SELECT DISTINCT CASE WHEN from_user = $1 THEN to_user ELSE from_user END
		FROM messages
		WHERE from_user = $1 OR to_user = $1;
	`

	// One row per counterpart: the newest message of the thread annotated
	// with how many of the counterpart's messages are still unread.
	queryLatestPerConversation = `
		WITH threads AS (
			SELECT m.*,
			       CASE WHEN m.from_user = $1 THEN m.to_user ELSE m.from_user END AS counterpart
			FROM messages m
			WHERE m.from_user = $1 OR m.to_user = $1
		),
		latest AS (
			SELECT DISTINCT ON (counterpart)
			       id, from_user, to_user, text, read, created_at, counterpart
			FROM threads
			ORDER BY counterpart, created_at DESC, id DESC
		)
		SELECT l.id, l.from_user, l.to_user, l.text, l.read, l.created_at, l.counterpart,
		       (SELECT COUNT(*)
		        FROM messages u
		        WHERE u.to_user = $1
		          AND u.from_user = l.counterpart
		          AND u.read = FALSE) AS unread_count
		FROM latest l
		ORDER BY l.created_at DESC, l.id DESC;
	`

	queryCreateUser = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, is_online, last_seen, created_at;
	`

	queryGetUserByUsername = `
		SELECT id, username, password_hash, is_online, last_seen, created_at
		FROM users
		WHERE username = $1;
	`

	queryListUsersExcept = `
		SELECT id, username, password_hash, is_online, last_seen, created_at
		FROM users
		WHERE username <> $1
		ORDER BY username;
	`

	querySetOnline = `
		UPDATE users SET is_online = TRUE WHERE username = $1;
	`

	querySetOffline = `
		UPDATE users SET is_online = FALSE, last_seen = $2 WHERE username = $1;
	`

	queryStatuses = `
		SELECT username, is_online, last_seen
		FROM users
		WHERE username = ANY($1);
	`
)
