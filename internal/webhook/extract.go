// internal/webhook/extract.go
package webhook

import "fmt"

// ExtractContent converts an inbound message of any supported type into the
// text stored on the conversation, plus a media reference when the message
// carried an attachment. Unknown types fall back to a bracketed type tag.
func ExtractContent(msg Message) (content string, mediaRef string) {
    switch msg.Type {
    case "text":
        if msg.Text != nil {
            return msg.Text.Body, ""
        }
        return "", ""

    case "image":
        if msg.Image != nil {
            return captionOr(msg.Image.Caption, "[Imagem]"), msg.Image.ID
        }
        return "[Imagem]", ""

    case "video":
        if msg.Video != nil {
            return captionOr(msg.Video.Caption, "[Vídeo]"), msg.Video.ID
        }
        return "[Vídeo]", ""

    case "audio":
        if msg.Audio != nil {
            return "[Áudio]", msg.Audio.ID
        }
        return "[Áudio]", ""

    case "document":
        if msg.Document != nil {
            return captionOr(msg.Document.Filename, "[Documento]"), msg.Document.ID
        }
        return "[Documento]", ""

    case "location":
        if msg.Location != nil {
            return fmt.Sprintf("[Localização: %v, %v]", msg.Location.Latitude, msg.Location.Longitude), ""
        }
        return "[Localização]", ""

    case "button":
        if msg.Button != nil && msg.Button.Text != "" {
            return msg.Button.Text, ""
        }
        return "[Botão]", ""

    case "interactive":
        if msg.Interactive != nil {
            switch msg.Interactive.Type {
            case "button_reply":
                if msg.Interactive.ButtonReply != nil && msg.Interactive.ButtonReply.Title != "" {
                    return msg.Interactive.ButtonReply.Title, ""
                }
                return "[Resposta de botão]", ""
            case "list_reply":
                if msg.Interactive.ListReply != nil && msg.Interactive.ListReply.Title != "" {
                    return msg.Interactive.ListReply.Title, ""
                }
                return "[Resposta de lista]", ""
            }
        }
        return "", ""

    default:
        return fmt.Sprintf("[%s]", msg.Type), ""
    }
}

func captionOr(caption, placeholder string) string {
    if caption != "" {
        return caption
    }
    return placeholder
}
