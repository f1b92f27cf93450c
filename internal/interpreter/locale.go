package interpreter

import (
	"math/rand/v2"
	"sort"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "vi"

// defaultLanguage is the display name for unknown locales.
const defaultLanguage = "Vietnamese"

var languages = map[string]string{
	"en": "English",
	"vi": "Vietnamese",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"es": "Spanish",
}

// LanguageName returns the English display name of a locale, falling back to
// Vietnamese.
func LanguageName(locale string) string {
	if name, ok := languages[locale]; ok {
		return name
	}
	return defaultLanguage
}

// IsSupported reports whether locale has a display name.
func IsSupported(locale string) bool {
	_, ok := languages[locale]
	return ok
}

// SupportedLocales returns the known locale codes in sorted order.
func SupportedLocales() []string {
	out := make([]string, 0, len(languages))
	for code := range languages {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

var busyMessages = map[string][]string{
	"vi": {
		"Thầy bận cưỡi trăn đi kiếm ăn rồi, em đợi thầy tẹo nhé!",
		"Thầy đang bận chạy show dạy Python xuyên lục địa, em kiên nhẫn tí nha!",
		"Thầy đang bận nấu cơm, mùi cá kho thơm quá làm thầy quên gõ phím, đợi xíu!",
		"Thầy đang bận rửa chén cho vợ, tay ướt không gõ code được, em tự thử lại xíu là giỏi ngay!",
		"Thầy đang bận quét nhà, bụi bay mờ mắt không thấy màn hình đâu, đợi thầy một lát!",
		"Thầy bận đi hái trăng sao về làm quà cho học trò giỏi, em đợi thầy về nha!",
		"Thầy đang bận đi dạo với 'người ấy', em thông cảm cho nỗi lòng thầy giáo FA lâu năm nhé!",
		"Thầy đang bận tập gym để có sức dạy em tiếp, đợi thầy đẩy tạ xong đã!",
		"Thầy bận đi bắt sâu cho vườn trăn Python của thầy, đợi thầy xíu xiu!",
	},
	"en": {
		"Teacher is busy riding a python to find food, wait a second!",
		"Teacher is busy running a global Python show, be patient!",
		"Teacher is busy cooking rice, the smell is so good! Wait a bit.",
		"Teacher is busy washing dishes, wet hands can't type! Try again soon.",
		"Teacher is busy sweeping the floor, hold on a moment!",
		"Teacher is busy catching stars for his best students, wait for me!",
		"Teacher is busy at the gym, let me finish this set first!",
		"Teacher is busy tending to his Python garden, be right back!",
	},
}

// Picker returns an index in [0, n). n is always positive.
type Picker func(n int) int

// BusyMessages returns the busy message set for locale, falling back to the
// Vietnamese set.
func BusyMessages(locale string) []string {
	if msgs, ok := busyMessages[locale]; ok {
		return msgs
	}
	return busyMessages[DefaultLocale]
}

// BusyMessage picks one busy message for locale. An out-of-range index from
// pick is wrapped into range; a nil pick uses the global random source.
func BusyMessage(locale string, pick Picker) string {
	msgs := BusyMessages(locale)
	if pick == nil {
		pick = rand.IntN
	}
	i := pick(len(msgs)) % len(msgs)
	if i < 0 {
		i += len(msgs)
	}
	return msgs[i]
}

// RandomPicker returns a Picker backed by r.
func RandomPicker(r *rand.Rand) Picker {
	return r.IntN
}

// FixedPicker always picks i. Useful in tests and for reproducible output.
func FixedPicker(i int) Picker {
	return func(int) int { return i }
}

var identityProtection = map[string]string{
	"vi": "Không thể đổi tên thầy Kha trong ứng dụng! Thầy/cô/em muốn đổi tên giáo viên thì liên hệ thầy Kha để xin 'chìa khóa' nhé!",
	"en": "Cannot change Teacher Kha's name in this app! If you want to change the teacher, please contact Teacher Kha for the 'Master Key'!",
}

func identityMessage(locale string) string {
	if msg, ok := identityProtection[locale]; ok {
		return msg
	}
	return identityProtection[DefaultLocale]
}

// replyKind names the tutor reply used when the model returns no text.
type replyKind int

const (
	replyHint replyKind = iota
	replyChallenge
	replyGuidance
)

var emptyReplies = map[string]map[replyKind]string{
	"vi": {
		replyHint:      "Thầy đang nghĩ cách giúp em...",
		replyChallenge: "Thầy đang soạn đề...",
		replyGuidance:  "Thầy tin gợi ý này sẽ giúp em!",
	},
	"en": {
		replyHint:      "Teacher is thinking about how to help you...",
		replyChallenge: "Teacher is writing a new challenge...",
		replyGuidance:  "Teacher believes this hint will help you!",
	},
}

func emptyReply(locale string, kind replyKind) string {
	if m, ok := emptyReplies[locale]; ok {
		return m[kind]
	}
	return emptyReplies[DefaultLocale][kind]
}
