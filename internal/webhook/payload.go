// internal/webhook/payload.go
package webhook

import "encoding/json"

// Payload shapes for inbound WhatsApp events. Meta posts the entry/changes
// envelope; the automation integration posts either a bare array of values
// or a single flattened value object.

type Envelope struct {
    Object string  `json:"object"`
    Entry  []Entry `json:"entry"`
}

type Entry struct {
    ID      string   `json:"id"`
    Changes []Change `json:"changes"`
}

type Change struct {
    Field string      `json:"field"`
    Value ChangeValue `json:"value"`
}

type ChangeValue struct {
    Metadata Metadata  `json:"metadata"`
    Contacts []Contact `json:"contacts"`
    Messages []Message `json:"messages"`
    Statuses []Status  `json:"statuses"`
}

type Metadata struct {
    DisplayPhoneNumber string `json:"display_phone_number"`
    PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
    WaID    string  `json:"wa_id"`
    Profile Profile `json:"profile"`
}

type Profile struct {
    Name string `json:"name"`
}

type Message struct {
    From        string              `json:"from"`
    ID          string              `json:"id"`
    Timestamp   string              `json:"timestamp"`
    Type        string              `json:"type"`
    Text        *TextContent        `json:"text,omitempty"`
    Image       *MediaContent       `json:"image,omitempty"`
    Video       *MediaContent       `json:"video,omitempty"`
    Audio       *MediaContent       `json:"audio,omitempty"`
    Document    *DocumentContent    `json:"document,omitempty"`
    Location    *LocationContent    `json:"location,omitempty"`
    Button      *ButtonContent      `json:"button,omitempty"`
    Interactive *InteractiveContent `json:"interactive,omitempty"`
}

type TextContent struct {
    Body string `json:"body"`
}

type MediaContent struct {
    ID       string `json:"id"`
    MimeType string `json:"mime_type"`
    Caption  string `json:"caption"`
}

type DocumentContent struct {
    ID       string `json:"id"`
    Filename string `json:"filename"`
    Caption  string `json:"caption"`
}

type LocationContent struct {
    Latitude  float64 `json:"latitude"`
    Longitude float64 `json:"longitude"`
    Name      string  `json:"name"`
    Address   string  `json:"address"`
}

type ButtonContent struct {
    Text    string `json:"text"`
    Payload string `json:"payload"`
}

type InteractiveContent struct {
    Type        string       `json:"type"`
    ButtonReply *ReplyOption `json:"button_reply,omitempty"`
    ListReply   *ReplyOption `json:"list_reply,omitempty"`
}

type ReplyOption struct {
    ID    string `json:"id"`
    Title string `json:"title"`
}

type Status struct {
    ID          string        `json:"id"`
    Status      string        `json:"status"` // sent, delivered, read, failed
    Timestamp   string        `json:"timestamp"`
    RecipientID string        `json:"recipient_id"`
    Errors      []StatusError `json:"errors,omitempty"`
}

type StatusError struct {
    Code    int    `json:"code"`
    Title   string `json:"title"`
    Message string `json:"message"`
}

// ParsePayload accepts the three body shapes providers send us: a bare array
// of value objects, the Meta entry envelope, or a single flattened value.
// Unrecognized bodies yield no values rather than an error; webhook callers
// retry on failure and a parse failure can never succeed on retry.
func ParsePayload(body []byte) []ChangeValue {
    var values []ChangeValue

    var asArray []ChangeValue
    if err := json.Unmarshal(body, &asArray); err == nil && len(asArray) > 0 {
        return asArray
    }

    var envelope Envelope
    if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Entry) > 0 {
        for _, entry := range envelope.Entry {
            for _, change := range entry.Changes {
                values = append(values, change.Value)
            }
        }
        return values
    }

    var flat ChangeValue
    if err := json.Unmarshal(body, &flat); err == nil {
        if flat.Metadata.PhoneNumberID != "" || len(flat.Messages) > 0 || len(flat.Statuses) > 0 {
            return []ChangeValue{flat}
        }
    }

    return nil
}

// ContactName looks up the sender's display name in the contacts array that
// accompanies inbound messages. Empty when the provider sent none.
func ContactName(contacts []Contact, waID string) string {
    for _, c := range contacts {
        if c.WaID == waID {
            return c.Profile.Name
        }
    }
    return ""
}
