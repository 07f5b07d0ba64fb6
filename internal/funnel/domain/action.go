package domain

// Action is a named operation an external agent invokes to advance a lead.
type Action string

const (
	ActionSendEmail1        Action = "send_email_1"
	ActionSendDmLi1         Action = "send_dm_li_1"
	ActionSendDmFb1         Action = "send_dm_fb_1"
	ActionSendDmIg1         Action = "send_dm_ig_1"
	ActionCallDone          Action = "call_done"
	ActionSendEmail2        Action = "send_email_2"
	ActionSendDm2           Action = "send_dm_2"
	ActionSendWaVoice       Action = "send_wa_voice"
	ActionMarkReplied       Action = "mark_replied"
	ActionMarkQualified     Action = "mark_qualified"
	ActionMarkNotInterested Action = "mark_not_interested"
)

// Actions lists every action in catalog order.
var Actions = []Action{
	ActionSendEmail1,
	ActionSendDmLi1,
	ActionSendDmFb1,
	ActionSendDmIg1,
	ActionCallDone,
	ActionSendEmail2,
	ActionSendDm2,
	ActionSendWaVoice,
	ActionMarkReplied,
	ActionMarkQualified,
	ActionMarkNotInterested,
}

// Flag identifies a one-shot boolean lead field recording that a specific
// action has already fired.
type Flag string

const (
	FlagEmailSent1  Flag = "emailSent1"
	FlagDmLiSent1   Flag = "dmLiSent1"
	FlagDmFbSent1   Flag = "dmFbSent1"
	FlagDmIgSent1   Flag = "dmIgSent1"
	FlagCallDone    Flag = "callDone"
	FlagEmailSent2  Flag = "emailSent2"
	FlagDmSent2     Flag = "dmSent2"
	FlagWaVoiceSent Flag = "waVoiceSent"
)

// Flags lists every one-shot flag in catalog order.
var Flags = []Flag{
	FlagEmailSent1,
	FlagDmLiSent1,
	FlagDmFbSent1,
	FlagDmIgSent1,
	FlagCallDone,
	FlagEmailSent2,
	FlagDmSent2,
	FlagWaVoiceSent,
}
