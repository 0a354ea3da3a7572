package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesDimonaco/trek-together-sub000/internal/chat"
	"github.com/JamesDimonaco/trek-together-sub000/internal/messages"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

// =============================================================================
// TRAIL REPORT FLOW TESTS
// =============================================================================

func (suite *HandlersTestSuite) createPost(as *models.User, title string) string {
	t := suite.T()

	w := suite.do("POST", "/api/v1/cities/"+suite.city.ID+"/posts", map[string]interface{}{
		"title": title,
		"body":  "bring crampons above 4000m",
	}, as)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	post := decode(t, w)["post"].(map[string]interface{})
	return post["id"].(string)
}

func (suite *HandlersTestSuite) TestCreateAndGetPost() {
	t := suite.T()

	postID := suite.createPost(suite.alice, "Annapurna circuit conditions")

	response := decode(t, suite.do("GET", "/api/v1/posts/"+postID, nil, nil))
	post := response["post"].(map[string]interface{})
	assert.Equal(t, "Annapurna circuit conditions", post["title"])
	assert.Equal(t, float64(0), post["like_count"])
}

func (suite *HandlersTestSuite) TestCreatePostValidation() {
	t := suite.T()

	// Missing body fails gin binding
	w := suite.do("POST", "/api/v1/cities/"+suite.city.ID+"/posts", map[string]interface{}{
		"title": "no body",
	}, suite.alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown city
	w = suite.do("POST", "/api/v1/cities/"+uuid.NewString()+"/posts", map[string]interface{}{
		"title": "ghost town",
		"body":  "nobody here",
	}, suite.alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGuestsCannotPost() {
	w := suite.do("POST", "/api/v1/cities/"+suite.city.ID+"/posts", map[string]interface{}{
		"title": "guest post",
		"body":  "should not land",
	}, suite.guest)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestToggleLikeFlips() {
	t := suite.T()

	postID := suite.createPost(suite.alice, "Likeable report")

	response := decode(t, suite.do("POST", "/api/v1/posts/"+postID+"/like", nil, suite.bob))
	assert.Equal(t, true, response["liked"])

	response = decode(t, suite.do("POST", "/api/v1/posts/"+postID+"/like", nil, suite.bob))
	assert.Equal(t, false, response["liked"])
}

func (suite *HandlersTestSuite) TestPostCommentsFlow() {
	t := suite.T()

	postID := suite.createPost(suite.alice, "Commented report")

	w := suite.do("POST", "/api/v1/posts/"+postID+"/comments", map[string]interface{}{
		"content": "thanks for the heads up",
	}, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decode(t, w)["comment"].(map[string]interface{})

	listed := decode(t, suite.do("GET", "/api/v1/posts/"+postID+"/comments", nil, nil))
	assert.Len(t, listed["comments"].([]interface{}), 1)

	// Only the author may delete their comment
	w = suite.do("DELETE", "/api/v1/posts/comments/"+comment["id"].(string), nil, suite.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = suite.do("DELETE", "/api/v1/posts/comments/"+comment["id"].(string), nil, suite.bob)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestDeletePostCascades() {
	t := suite.T()

	postID := suite.createPost(suite.alice, "Doomed report")
	suite.do("POST", "/api/v1/posts/"+postID+"/like", nil, suite.bob)
	suite.do("POST", "/api/v1/posts/"+postID+"/comments", map[string]interface{}{
		"content": "soon to vanish",
	}, suite.bob)

	// Only the author may delete
	w := suite.do("DELETE", "/api/v1/posts/"+postID, nil, suite.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.do("DELETE", "/api/v1/posts/"+postID, nil, suite.alice)
	assert.Equal(t, http.StatusOK, w.Code)

	var comments, likes int64
	suite.db.Model(&models.PostComment{}).Where("post_id = ?", postID).Count(&comments)
	suite.db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likes)
	assert.Zero(t, comments)
	assert.Zero(t, likes)

	w = suite.do("GET", "/api/v1/posts/"+postID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestBlockedAuthorsPostsHidden() {
	t := suite.T()

	suite.createPost(suite.bob, "Soon invisible")
	suite.do("POST", "/api/v1/users/"+suite.bob.ID+"/block", nil, suite.alice)

	response := decode(t, suite.do("GET", "/api/v1/cities/"+suite.city.ID+"/posts", nil, suite.alice))
	assert.Empty(t, response["posts"])

	// Anonymous viewers still see everything
	response = decode(t, suite.do("GET", "/api/v1/cities/"+suite.city.ID+"/posts", nil, nil))
	assert.Len(t, response["posts"].([]interface{}), 1)
}

// =============================================================================
// TREK BUDDY REQUEST FLOW TESTS
// =============================================================================

func (suite *HandlersTestSuite) createRequest(as *models.User, title string) string {
	t := suite.T()

	w := suite.do("POST", "/api/v1/cities/"+suite.city.ID+"/requests", map[string]interface{}{
		"title": title,
		"body":  "looking for a partner for the three passes",
	}, as)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	request := decode(t, w)["request"].(map[string]interface{})
	return request["id"].(string)
}

func (suite *HandlersTestSuite) TestRequestInterestFlow() {
	t := suite.T()

	requestID := suite.createRequest(suite.alice, "Three passes in October")

	// Authors cannot register interest in their own request
	w := suite.do("POST", "/api/v1/requests/"+requestID+"/interest", nil, suite.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	response := decode(t, suite.do("POST", "/api/v1/requests/"+requestID+"/interest", nil, suite.bob))
	assert.Equal(t, true, response["interested"])

	// The interested list is author-only
	w = suite.do("GET", "/api/v1/requests/"+requestID+"/interested", nil, suite.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	listed := decode(t, suite.do("GET", "/api/v1/requests/"+requestID+"/interested", nil, suite.alice))
	assert.Len(t, listed["interested"].([]interface{}), 1)
}

func (suite *HandlersTestSuite) TestRequestStatusFlow() {
	t := suite.T()

	requestID := suite.createRequest(suite.alice, "Closable request")

	// Only the author may close
	w := suite.do("PATCH", "/api/v1/requests/"+requestID+"/status", map[string]interface{}{
		"status": "closed",
	}, suite.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.do("PATCH", "/api/v1/requests/"+requestID+"/status", map[string]interface{}{
		"status": "closed",
	}, suite.alice)
	assert.Equal(t, http.StatusOK, w.Code)

	// Closed requests drop out of the default list but stay fetchable
	response := decode(t, suite.do("GET", "/api/v1/cities/"+suite.city.ID+"/requests", nil, nil))
	assert.Empty(t, response["requests"])

	response = decode(t, suite.do("GET", "/api/v1/cities/"+suite.city.ID+"/requests?include_closed=true", nil, nil))
	assert.Len(t, response["requests"].([]interface{}), 1)

	w = suite.do("GET", "/api/v1/requests/"+requestID, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteRequestCascades() {
	t := suite.T()

	requestID := suite.createRequest(suite.alice, "Doomed request")
	suite.do("POST", "/api/v1/requests/"+requestID+"/interest", nil, suite.bob)
	suite.do("POST", "/api/v1/requests/"+requestID+"/comments", map[string]interface{}{
		"content": "interested, details?",
	}, suite.bob)

	w := suite.do("DELETE", "/api/v1/requests/"+requestID, nil, suite.alice)
	assert.Equal(t, http.StatusOK, w.Code)

	var interests, comments int64
	suite.db.Model(&models.RequestInterest{}).Where("request_id = ?", requestID).Count(&interests)
	suite.db.Model(&models.RequestComment{}).Where("request_id = ?", requestID).Count(&comments)
	assert.Zero(t, interests)
	assert.Zero(t, comments)
}

// =============================================================================
// ROOM CHAT TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestCityChatFlow() {
	t := suite.T()

	w := suite.do("POST", "/api/v1/chat/city/"+suite.city.ID+"/messages", map[string]interface{}{
		"content": "anyone at the lakeside tonight?",
	}, suite.alice)
	assert.Equal(t, http.StatusCreated, w.Code)

	response := decode(t, suite.do("GET", "/api/v1/chat/city/"+suite.city.ID+"/messages", nil, nil))
	assert.Len(t, response["messages"].([]interface{}), 1)
}

func (suite *HandlersTestSuite) TestCountryChatUsesCountryCode() {
	t := suite.T()

	w := suite.do("POST", "/api/v1/chat/country/NP/messages", map[string]interface{}{
		"content": "crossing the border next week",
	}, suite.guest)
	assert.Equal(t, http.StatusCreated, w.Code, "guests may chat")

	// A country with no cities doesn't exist as a room
	w = suite.do("POST", "/api/v1/chat/country/XX/messages", map[string]interface{}{
		"content": "hello nowhere",
	}, suite.alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUnknownRoomTypeRejected() {
	w := suite.do("GET", "/api/v1/chat/group/"+suite.city.ID+"/messages", nil, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestChatHidesBlockedAuthors() {
	t := suite.T()

	suite.do("POST", "/api/v1/chat/city/"+suite.city.ID+"/messages", map[string]interface{}{
		"content": "message from bob",
	}, suite.bob)
	suite.do("POST", "/api/v1/users/"+suite.bob.ID+"/block", nil, suite.alice)

	response := decode(t, suite.do("GET", "/api/v1/chat/city/"+suite.city.ID+"/messages", nil, suite.alice))
	assert.Empty(t, response["messages"])
}

func (suite *HandlersTestSuite) TestSendingClearsTypingIndicator() {
	t := suite.T()

	conversationID := chat.RoomConversationID(models.RoomTypeCity, suite.city.ID)
	w := suite.do("POST", "/api/v1/typing", map[string]interface{}{
		"conversation_id": conversationID,
		"type":            "city",
	}, suite.alice)
	require.Equal(t, http.StatusOK, w.Code)

	// Bob sees alice typing
	response := decode(t, suite.do("GET", "/api/v1/typing/"+conversationID, nil, suite.bob))
	assert.Len(t, response["typing"].([]interface{}), 1)

	// Alice sends the message; her indicator clears
	suite.do("POST", "/api/v1/chat/city/"+suite.city.ID+"/messages", map[string]interface{}{
		"content": "there it goes",
	}, suite.alice)

	response = decode(t, suite.do("GET", "/api/v1/typing/"+conversationID, nil, suite.bob))
	assert.Empty(t, response["typing"])
}

// =============================================================================
// DIRECT MESSAGE TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestDirectMessageFlow() {
	t := suite.T()

	w := suite.do("POST", "/api/v1/messages/"+suite.bob.ID, map[string]interface{}{
		"content": "joining the trek?",
	}, suite.alice)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Bob's inbox has one conversation with one unread message
	response := decode(t, suite.do("GET", "/api/v1/messages/conversations", nil, suite.bob))
	conversations := response["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	assert.Equal(t, float64(1), conversations[0].(map[string]interface{})["unread_count"])

	// Opening the conversation marks it read
	response = decode(t, suite.do("GET", "/api/v1/messages/conversations/"+suite.alice.ID, nil, suite.bob))
	assert.Len(t, response["messages"].([]interface{}), 1)

	response = decode(t, suite.do("GET", "/api/v1/messages/conversations", nil, suite.bob))
	conversations = response["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	assert.Equal(t, float64(0), conversations[0].(map[string]interface{})["unread_count"])
}

func (suite *HandlersTestSuite) TestDirectMessageBlockedRejected() {
	t := suite.T()

	suite.do("POST", "/api/v1/users/"+suite.bob.ID+"/block", nil, suite.alice)

	// Either side of the block may not message the other
	w := suite.do("POST", "/api/v1/messages/"+suite.bob.ID, map[string]interface{}{
		"content": "should bounce",
	}, suite.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.do("POST", "/api/v1/messages/"+suite.alice.ID, map[string]interface{}{
		"content": "also bounces",
	}, suite.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestDirectMessageSendClearsTyping() {
	t := suite.T()

	conversationID := messages.ConversationID(suite.alice.ID, suite.bob.ID)
	suite.do("POST", "/api/v1/typing", map[string]interface{}{
		"conversation_id": conversationID,
		"type":            "direct",
	}, suite.alice)

	suite.do("POST", "/api/v1/messages/"+suite.bob.ID, map[string]interface{}{
		"content": "sent",
	}, suite.alice)

	response := decode(t, suite.do("GET", "/api/v1/typing/"+conversationID, nil, suite.bob))
	assert.Empty(t, response["typing"])
}

// =============================================================================
// TYPING INDICATOR TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestTypingExcludesSelf() {
	t := suite.T()

	conversationID := chat.RoomConversationID(models.RoomTypeCity, suite.city.ID)
	suite.do("POST", "/api/v1/typing", map[string]interface{}{
		"conversation_id": conversationID,
		"type":            "city",
	}, suite.alice)

	response := decode(t, suite.do("GET", "/api/v1/typing/"+conversationID, nil, suite.alice))
	assert.Empty(t, response["typing"], "callers never see their own indicator")
}

func (suite *HandlersTestSuite) TestTypingRejectsUnknownType() {
	w := suite.do("POST", "/api/v1/typing", map[string]interface{}{
		"conversation_id": "anything",
		"type":            "carrier-pigeon",
	}, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestClearTyping() {
	t := suite.T()

	conversationID := chat.RoomConversationID(models.RoomTypeCity, suite.city.ID)
	suite.do("POST", "/api/v1/typing", map[string]interface{}{
		"conversation_id": conversationID,
		"type":            "city",
	}, suite.alice)

	w := suite.do("DELETE", "/api/v1/typing/"+conversationID, nil, suite.alice)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, suite.do("GET", "/api/v1/typing/"+conversationID, nil, suite.bob))
	assert.Empty(t, response["typing"])
}
