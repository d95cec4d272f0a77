package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

const apiURL = "https://api.monday.com/v2"

// Client posts items to Monday.com boards through its GraphQL API.
type Client struct {
	apiToken   string
	boardID    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		apiToken:   os.Getenv("MONDAY_API_KEY"),
		boardID:    os.Getenv("MONDAY_BOARD_ID"),
		httpClient: http.DefaultClient,
	}
}

// CreateItem adds an item to the given group of the configured board and
// returns the new item id. Column values are passed through as Monday column
// ids mapped to text.
func (c *Client) CreateItem(ctx context.Context, groupName, itemName string, columns map[string]string) (string, error) {
	if c.apiToken == "" {
		log.Println("⚠️ Monday: MONDAY_API_KEY not configured")
		return "", fmt.Errorf("monday is not configured")
	}

	columnValues, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("failed to encode column values: %w", err)
	}

	query := `
		mutation ($boardId: ID!, $groupId: String!, $itemName: String!, $columnValues: JSON!) {
			create_item(board_id: $boardId, group_id: $groupId, item_name: $itemName, column_values: $columnValues) {
				id
			}
		}
	`
	payload, _ := json.Marshal(map[string]any{
		"query": query,
		"variables": map[string]any{
			"boardId":      c.boardID,
			"groupId":      groupName,
			"itemName":     itemName,
			"columnValues": string(columnValues),
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("monday returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data struct {
			CreateItem struct {
				ID string `json:"id"`
			} `json:"create_item"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("monday call failed: %s", result.Errors[0].Message)
	}

	log.Printf("✅ Monday: item %s created (%s)", result.Data.CreateItem.ID, itemName)
	return result.Data.CreateItem.ID, nil
}
