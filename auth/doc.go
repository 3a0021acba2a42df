// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Moderator Key

The moderator key uses HMAC-SHA256 over a fixed scope string:

	key := auth.GenerateModeratorKey(salt)
	err := auth.ValidateModeratorKey(key, salt)

Moderators and the Speaker send it in X-Moderator-Key. It is never stored;
rotating the salt rotates the key.

# Character Tokens

Players act as a character by presenting the character's name and token:

	token := auth.GenerateCharacterToken("Ann", salt)
	err := auth.ValidateCharacterToken("Ann", token, salt)

The token is bound to the name, so one character's token cannot be used
for another.

# Slugs

Bills get a short base62 handle derived from their ID:

	slug := auth.GenerateSlug(billID, salt)

# ID Generation

Random hex IDs for bills and amendments:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Ballots record a salted hash of the caster's address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
