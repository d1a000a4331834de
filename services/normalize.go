// ABOUTME: Tolerant normalization of upstream gallery API responses
// ABOUTME: Maps drifting field names and shapes into canonical records

package services

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/artspark/gallery-bff/models"
)

// The upstream API has shipped several shapes for the same data over time:
// owners under "appUser" or "user", like counts as "likeCount", "likesCount"
// or a raw "likes" array, numbers sometimes encoded as strings. Normalization
// accepts all known spellings and produces one canonical record. Priority is
// fixed: when two spellings coexist the earlier one wins.

// NormalizeArtwork converts one upstream artwork JSON object. The object must
// carry a usable id and title; everything else degrades to zero values.
func NormalizeArtwork(raw gjson.Result) (models.ArtworkRecord, error) {
	id := intField(raw, "id", "artId", "artworkId")
	title := firstString(raw, "title", "name")
	if id == 0 || title == "" {
		return models.ArtworkRecord{}, malformedDataError("artwork missing id or title")
	}

	rec := models.ArtworkRecord{
		ID:         id,
		Title:      title,
		PromptText: firstString(raw, "promptText", "prompt"),
		ImageURL:   firstString(raw, "imageUrl", "imagePath", "image"),
		CreatedAt:  timeField(raw, "createdAt", "createdDate", "uploadDate"),
	}

	rec.Owner, rec.OwnerID = normalizeOwner(raw)
	rec.Category = normalizeCategory(raw)
	rec.LikeCount = countField(raw, []string{"likeCount", "likesCount"}, "likes")
	rec.CommentCount = countField(raw, []string{"commentCount", "commentsCount"}, "comments")
	rec.ViewerHasLiked = firstBool(raw, "isLikedByCurrentUser", "likedByCurrentUser", "isLiked")

	return rec, nil
}

// NormalizeArtworkList accepts either a bare JSON array or a Spring page
// object with the array under "content". A list whose every element fails
// normalization is a malformed response; individually bad elements are
// skipped so one rotten row cannot blank a whole gallery page.
func NormalizeArtworkList(body []byte) ([]models.ArtworkRecord, error) {
	items, err := collectionItems(body)
	if err != nil {
		return nil, err
	}

	records := make([]models.ArtworkRecord, 0, len(items))
	for _, item := range items {
		rec, err := NormalizeArtwork(item)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(items) > 0 && len(records) == 0 {
		return nil, malformedDataError("no artwork in response could be normalized")
	}
	return records, nil
}

// NormalizeArtworkBody parses a single-artwork response body.
func NormalizeArtworkBody(body []byte) (models.ArtworkRecord, error) {
	if !gjson.ValidBytes(body) {
		return models.ArtworkRecord{}, malformedDataError("artwork response is not JSON")
	}
	return NormalizeArtwork(gjson.ParseBytes(body))
}

// NormalizeComment converts one upstream comment object. Comments arrive
// either flat (id, content, username) or with a nested author object.
func NormalizeComment(raw gjson.Result) (models.CommentRecord, error) {
	id := intField(raw, "id", "commentId")
	content := firstString(raw, "content", "text")
	if id == 0 || content == "" {
		return models.CommentRecord{}, malformedDataError("comment missing id or content")
	}

	rec := models.CommentRecord{
		ID:        id,
		Content:   content,
		CreatedAt: timeField(raw, "createdAt", "createdDate"),
		ArtworkID: intField(raw, "artId", "artworkId"),
	}

	for _, key := range []string{"appUser", "user", "author"} {
		if obj := raw.Get(key); obj.IsObject() {
			rec.Author = &models.UserSummary{
				ID:       intField(obj, "id", "userId"),
				Username: firstString(obj, "username", "name"),
			}
			rec.AuthorID = rec.Author.ID
			break
		}
	}
	if rec.Author == nil {
		if username := firstString(raw, "username", "authorUsername"); username != "" {
			rec.Author = &models.UserSummary{
				ID:       intField(raw, "appUserId", "userId", "authorId"),
				Username: username,
			}
			rec.AuthorID = rec.Author.ID
		}
	}

	return rec, nil
}

// NormalizeComments parses a comment collection body.
func NormalizeComments(body []byte) ([]models.CommentRecord, error) {
	items, err := collectionItems(body)
	if err != nil {
		return nil, err
	}

	records := make([]models.CommentRecord, 0, len(items))
	for _, item := range items {
		rec, err := NormalizeComment(item)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(items) > 0 && len(records) == 0 {
		return nil, malformedDataError("no comment in response could be normalized")
	}
	return records, nil
}

// NormalizeCategories parses the category list.
func NormalizeCategories(body []byte) ([]models.CategorySummary, error) {
	items, err := collectionItems(body)
	if err != nil {
		return nil, err
	}

	categories := make([]models.CategorySummary, 0, len(items))
	for _, item := range items {
		id := intField(item, "id", "categoryId")
		name := firstString(item, "name", "categoryName")
		if id == 0 || name == "" {
			continue
		}
		categories = append(categories, models.CategorySummary{ID: id, Name: name})
	}
	return categories, nil
}

// NormalizeLikeToggle parses the interaction response of a like/unlike call.
func NormalizeLikeToggle(body []byte) (models.LikeToggleResult, error) {
	if !gjson.ValidBytes(body) {
		return models.LikeToggleResult{}, malformedDataError("like response is not JSON")
	}
	raw := gjson.ParseBytes(body)

	return models.LikeToggleResult{
		ViewerHasLiked: firstBool(raw, "isLiked", "liked", "isLikedByCurrentUser"),
		LikeCount:      intField(raw, "likeCount", "likesCount"),
		Message:        firstString(raw, "message"),
	}, nil
}

// NormalizeUser parses a user identity object (login response or /auth/me).
func NormalizeUser(raw gjson.Result) (models.AuthUser, error) {
	id := intField(raw, "id", "userId")
	username := firstString(raw, "username")
	if id == 0 || username == "" {
		return models.AuthUser{}, malformedDataError("user missing id or username")
	}

	user := models.AuthUser{
		ID:       id,
		Username: username,
		Email:    firstString(raw, "email"),
		Surname:  firstString(raw, "surname", "lastName"),
		Enabled:  true,
	}
	if enabled := raw.Get("enabled"); enabled.Exists() {
		user.Enabled = enabled.Bool()
	}

	roles := raw.Get("roles")
	if roles.IsArray() {
		names := make([]string, 0, len(roles.Array()))
		for _, r := range roles.Array() {
			if r.IsObject() {
				names = append(names, r.Get("name").String())
			} else {
				names = append(names, r.String())
			}
		}
		user.Roles = models.NormalizeRoles(names)
	} else if roles.Type == gjson.String {
		user.Roles = models.NormalizeRoles(strings.Split(roles.String(), ","))
	}

	return user, nil
}

// NormalizeLogin parses a login response body into token plus identity.
func NormalizeLogin(body []byte) (models.LoginResult, error) {
	if !gjson.ValidBytes(body) {
		return models.LoginResult{}, malformedDataError("login response is not JSON")
	}
	raw := gjson.ParseBytes(body)

	token := firstString(raw, "token", "accessToken", "access_token")
	if token == "" {
		return models.LoginResult{}, malformedDataError("login response missing token")
	}

	// Identity fields live either on the top level next to the token or
	// under a nested user object.
	userRaw := raw
	if nested := raw.Get("user"); nested.IsObject() {
		userRaw = nested
	}
	user, err := NormalizeUser(userRaw)
	if err != nil {
		return models.LoginResult{}, err
	}

	return models.LoginResult{Token: token, User: user}, nil
}

// NormalizePromptAnalysis parses the ML service verdict. The service has
// shipped both English and Turkish key names.
func NormalizePromptAnalysis(body []byte) (models.PromptAnalysis, error) {
	if !gjson.ValidBytes(body) {
		return models.PromptAnalysis{}, malformedDataError("analysis response is not JSON")
	}
	raw := gjson.ParseBytes(body)

	result := models.PromptAnalysis{
		Prediction: firstString(raw, "prediction", "tahmin"),
		Confidence: floatField(raw, "confidence", "guven_orani"),
	}
	if result.Prediction == "" {
		return models.PromptAnalysis{}, malformedDataError("analysis response missing prediction")
	}

	for _, key := range []string{"details", "detaylar"} {
		if details := raw.Get(key); details.IsObject() {
			result.Details = make(map[string]float64)
			details.ForEach(func(k, v gjson.Result) bool {
				result.Details[k.String()] = v.Float()
				return true
			})
			break
		}
	}

	return result, nil
}

// collectionItems returns the elements of a collection body, accepting a
// bare array or a page object wrapping the array under "content".
func collectionItems(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformedDataError("collection response is not JSON")
	}
	raw := gjson.ParseBytes(body)
	if raw.IsArray() {
		return raw.Array(), nil
	}
	if content := raw.Get("content"); content.IsArray() {
		return content.Array(), nil
	}
	return nil, malformedDataError("collection response is neither array nor page")
}

func normalizeOwner(raw gjson.Result) (*models.UserSummary, int) {
	for _, key := range []string{"appUser", "user", "owner"} {
		if obj := raw.Get(key); obj.IsObject() {
			owner := &models.UserSummary{
				ID:       intField(obj, "id", "userId"),
				Username: firstString(obj, "username", "name"),
			}
			return owner, owner.ID
		}
	}
	if id := intField(raw, "appUserId", "userId", "ownerId"); id != 0 {
		owner := &models.UserSummary{ID: id, Username: firstString(raw, "username", "ownerUsername")}
		return owner, id
	}
	return nil, 0
}

func normalizeCategory(raw gjson.Result) *models.CategorySummary {
	candidate := raw.Get("category")
	if !candidate.IsObject() {
		if list := raw.Get("categories"); list.IsArray() && len(list.Array()) > 0 {
			// Multiple categories collapse to the first one.
			candidate = list.Array()[0]
		}
	}
	if !candidate.IsObject() {
		return nil
	}
	id := intField(candidate, "id", "categoryId")
	name := firstString(candidate, "name", "categoryName")
	if id == 0 && name == "" {
		return nil
	}
	return &models.CategorySummary{ID: id, Name: name}
}

// countField resolves a count that arrives as an explicit number under one
// of the countKeys, or implicitly as the length of an array under arrayKey.
func countField(raw gjson.Result, countKeys []string, arrayKey string) int {
	for _, key := range countKeys {
		if v := raw.Get(key); v.Exists() && v.Type != gjson.Null {
			return int(v.Int())
		}
	}
	if arr := raw.Get(arrayKey); arr.IsArray() {
		return len(arr.Array())
	}
	return 0
}

// intField returns the first present key as an int. gjson coerces numeric
// strings, so "42" and 42 are equivalent.
func intField(raw gjson.Result, keys ...string) int {
	for _, key := range keys {
		if v := raw.Get(key); v.Exists() && v.Type != gjson.Null {
			return int(v.Int())
		}
	}
	return 0
}

func floatField(raw gjson.Result, keys ...string) float64 {
	for _, key := range keys {
		if v := raw.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.Float()
		}
	}
	return 0
}

func firstString(raw gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := raw.Get(key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstBool(raw gjson.Result, keys ...string) bool {
	for _, key := range keys {
		if v := raw.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.Bool()
		}
	}
	return false
}

// timeField parses the first present timestamp key. RFC 3339 is tried
// first, then the zone-less format Java's LocalDateTime serializes to.
func timeField(raw gjson.Result, keys ...string) time.Time {
	var value string
	for _, key := range keys {
		if v := raw.Get(key); v.Type == gjson.String && v.String() != "" {
			value = v.String()
			break
		}
	}
	if value == "" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
