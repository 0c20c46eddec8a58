package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block is one typed segment of an article body. The concrete types form a
// closed set; decoding an unknown type tag is an error rather than a
// silent skip.
type Block interface {
	BlockType() string
	// SearchText returns the block's contribution to the article's
	// searchable text. Non-textual blocks return captions or nothing.
	SearchText() string
}

// Block type tags as stored in the JSON envelope.
const (
	blockText    = "text"
	blockHeading = "heading"
	blockQuote   = "quote"
	blockCode    = "code"
	blockImage   = "image"
	blockVideo   = "video"
	blockGallery = "gallery"
	blockDivider = "divider"
)

type TextBlock struct {
	Text string `json:"text"`
}

func (b TextBlock) BlockType() string  { return blockText }
func (b TextBlock) SearchText() string { return b.Text }

type HeadingBlock struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

func (b HeadingBlock) BlockType() string  { return blockHeading }
func (b HeadingBlock) SearchText() string { return b.Text }

type QuoteBlock struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution,omitempty"`
}

func (b QuoteBlock) BlockType() string { return blockQuote }
func (b QuoteBlock) SearchText() string {
	if b.Attribution == "" {
		return b.Text
	}
	return b.Text + " " + b.Attribution
}

type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

func (b CodeBlock) BlockType() string  { return blockCode }
func (b CodeBlock) SearchText() string { return b.Code }

type ImageBlock struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (b ImageBlock) BlockType() string { return blockImage }
func (b ImageBlock) SearchText() string {
	return strings.TrimSpace(b.Alt + " " + b.Caption)
}

type VideoBlock struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

func (b VideoBlock) BlockType() string  { return blockVideo }
func (b VideoBlock) SearchText() string { return b.Caption }

type GalleryBlock struct {
	Images   []string `json:"images"`
	Captions []string `json:"captions,omitempty"`
}

func (b GalleryBlock) BlockType() string  { return blockGallery }
func (b GalleryBlock) SearchText() string { return strings.Join(b.Captions, " ") }

type DividerBlock struct{}

func (b DividerBlock) BlockType() string  { return blockDivider }
func (b DividerBlock) SearchText() string { return "" }

// BlockList carries the tagged-union JSON encoding: each element is an
// object with a "type" tag alongside the payload fields.
type BlockList []Block

// RenderText concatenates the textual contribution of every block,
// space-separated, for search indexing.
func (l BlockList) RenderText() string {
	parts := make([]string, 0, len(l))
	for _, b := range l {
		if b == nil {
			continue
		}
		if txt := strings.TrimSpace(b.SearchText()); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}

func (l BlockList) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(l))
	for _, b := range l {
		if b == nil {
			continue
		}
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		entry := map[string]any{}
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, err
		}
		entry["type"] = b.BlockType()
		out = append(out, entry)
	}
	return json.Marshal(out)
}

func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	blocks := make(BlockList, 0, len(raw))
	for i, msg := range raw {
		block, err := decodeBlock(msg)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	*l = blocks
	return nil
}

func decodeBlock(data []byte) (Block, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	switch envelope.Type {
	case blockText:
		return unmarshalBlock[TextBlock](data)
	case blockHeading:
		return unmarshalBlock[HeadingBlock](data)
	case blockQuote:
		return unmarshalBlock[QuoteBlock](data)
	case blockCode:
		return unmarshalBlock[CodeBlock](data)
	case blockImage:
		return unmarshalBlock[ImageBlock](data)
	case blockVideo:
		return unmarshalBlock[VideoBlock](data)
	case blockGallery:
		return unmarshalBlock[GalleryBlock](data)
	case blockDivider:
		return unmarshalBlock[DividerBlock](data)
	default:
		return nil, fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, envelope.Type)
	}
}

func unmarshalBlock[T Block](data []byte) (Block, error) {
	var b T
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return b, nil
}
