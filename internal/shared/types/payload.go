package types

import "strings"

// Payload carries the type-specific data of a window. Exactly one variant
// is set and it must match the window's type.
type Payload struct {
	Chat     *ChatPayload          `json:"chat,omitempty"`
	Settings *SettingsPayload      `json:"settings,omitempty"`
	Form     *WorkspaceFormPayload `json:"form,omitempty"`
}

// ChatPayload is the state of a chat window
type ChatPayload struct {
	ProviderID     string    `json:"providerId"`
	Messages       []Message `json:"messages"`
	ScrollToBottom bool      `json:"scrollToBottom,omitempty"`
}

// SettingsPayload is the state of a settings window. Inside a window the
// credentials are always masked; real keys only travel to the settings store.
type SettingsPayload struct {
	Credentials map[string]string `json:"credentials"`
}

// MaskSecret hides all but the last four characters of a key. Masking a
// masked key returns it unchanged.
func MaskSecret(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// MaskCredentials masks every credential value in place
func (p *SettingsPayload) MaskCredentials() {
	for provider, key := range p.Credentials {
		p.Credentials[provider] = MaskSecret(key)
	}
}

// WorkspaceFormPayload is the transient state of a workspace-creation form
type WorkspaceFormPayload struct {
	Name string `json:"name"`
}

// Matches reports whether the payload carries exactly the variant for t
func (p Payload) Matches(t WindowType) bool {
	set := 0
	if p.Chat != nil {
		set++
	}
	if p.Settings != nil {
		set++
	}
	if p.Form != nil {
		set++
	}
	if set != 1 {
		return false
	}

	switch t {
	case WindowChat:
		return p.Chat != nil
	case WindowSettings:
		return p.Settings != nil
	case WindowWorkspaceCreation:
		return p.Form != nil
	}
	return false
}

// EmptyPayload returns the zero-state payload for a window type
func EmptyPayload(t WindowType) Payload {
	switch t {
	case WindowChat:
		return Payload{Chat: &ChatPayload{Messages: []Message{}}}
	case WindowSettings:
		return Payload{Settings: &SettingsPayload{Credentials: map[string]string{}}}
	case WindowWorkspaceCreation:
		return Payload{Form: &WorkspaceFormPayload{}}
	}
	return Payload{}
}

// Clone returns a deep copy of the payload
func (p Payload) Clone() Payload {
	var c Payload
	if p.Chat != nil {
		chat := *p.Chat
		if p.Chat.Messages != nil {
			chat.Messages = make([]Message, len(p.Chat.Messages))
			copy(chat.Messages, p.Chat.Messages)
		}
		c.Chat = &chat
	}
	if p.Settings != nil {
		settings := SettingsPayload{}
		if p.Settings.Credentials != nil {
			settings.Credentials = make(map[string]string, len(p.Settings.Credentials))
			for k, v := range p.Settings.Credentials {
				settings.Credentials[k] = v
			}
		}
		c.Settings = &settings
	}
	if p.Form != nil {
		form := *p.Form
		c.Form = &form
	}
	return c
}
