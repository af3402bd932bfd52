package irc

// IRC replies.
const (
	rplWelcome  = "001" // :Welcome message
	rplIsupport = "005" // 1*13<TOKEN[=value]> :are supported by this server

	rplWhoisuser     = "311" // <nick> <user> <host> * :<realname>
	rplWhoisserver   = "312" // <nick> <server> :<server info>
	rplWhoisoperator = "313" // <nick> :is an IRC operator
	rplWhoisidle     = "317" // <nick> <integer> [<integer>] :seconds idle [, signon time]
	rplEndofwhois    = "318" // <nick> :End of WHOIS list
	rplWhoischannels = "319" // <nick> :*( (@/+) <channel> " " )
	rplWhoisaccount  = "330" // <nick> <account> :is logged in as
	rplTopic         = "332" // <channel> <topic>
	rplTopicwhotime  = "333" // <channel> <nick> <setat>
	rplNamreply      = "353" // <=/*/@> <channel> :1*(@/ /+user)
	rplEndofnames    = "366" // <channel> :End of names list
	rplMotd          = "372" // :- <text>
	rplMotdstart     = "375" // :- <servername> Message of the day -
	rplEndofmotd     = "376" // :End of MOTD command

	errNosuchnick = "401" // <nick> :No such nick/channel
)

// Reply types, as reported in ErrorEvent.CommandType.
const (
	ReplyNormal = "normal"
	ReplyReply  = "reply"
	ReplyError  = "error"
)

// replyNames maps numerics to their conventional lowercase names.
var replyNames = map[string]string{
	"001": "rpl_welcome",
	"002": "rpl_yourhost",
	"003": "rpl_created",
	"004": "rpl_myinfo",
	"005": "rpl_isupport",

	"221": "rpl_umodeis",
	"251": "rpl_luserclient",
	"252": "rpl_luserop",
	"253": "rpl_luserunknown",
	"254": "rpl_luserchannels",
	"255": "rpl_luserme",

	"301": "rpl_away",
	"305": "rpl_unaway",
	"306": "rpl_nowaway",
	"311": "rpl_whoisuser",
	"312": "rpl_whoisserver",
	"313": "rpl_whoisoperator",
	"315": "rpl_endofwho",
	"317": "rpl_whoisidle",
	"318": "rpl_endofwhois",
	"319": "rpl_whoischannels",
	"321": "rpl_liststart",
	"322": "rpl_list",
	"323": "rpl_listend",
	"324": "rpl_channelmodeis",
	"330": "rpl_whoisaccount",
	"331": "rpl_notopic",
	"332": "rpl_topic",
	"333": "rpl_topicwhotime",
	"341": "rpl_inviting",
	"352": "rpl_whoreply",
	"353": "rpl_namreply",
	"366": "rpl_endofnames",
	"372": "rpl_motd",
	"375": "rpl_motdstart",
	"376": "rpl_endofmotd",

	"401": "err_nosuchnick",
	"402": "err_nosuchserver",
	"403": "err_nosuchchannel",
	"404": "err_cannotsendtochan",
	"405": "err_toomanychannels",
	"406": "err_wasnosuchnick",
	"407": "err_toomanytargets",
	"409": "err_noorigin",
	"410": "err_invalidcapcmd",
	"411": "err_norecipient",
	"412": "err_notexttosend",
	"417": "err_inputtoolong",
	"421": "err_unknowncommand",
	"422": "err_nomotd",
	"431": "err_nonicknamegiven",
	"432": "err_erroneusnickname",
	"433": "err_nicknameinuse",
	"436": "err_nickcollision",
	"441": "err_usernotinchannel",
	"442": "err_notonchannel",
	"443": "err_useronchannel",
	"451": "err_notregistered",
	"461": "err_needmoreparams",
	"462": "err_alreadyregistred",
	"464": "err_passwdmismatch",
	"465": "err_yourebannedcreep",
	"467": "err_keyset",
	"471": "err_channelisfull",
	"472": "err_unknownmode",
	"473": "err_inviteonlychan",
	"474": "err_bannedfromchan",
	"475": "err_badchannelkey",
	"476": "err_badchanmask",
	"477": "err_nochanmodes",
	"481": "err_noprivileges",
	"482": "err_chanoprivsneeded",
	"483": "err_cantkillserver",
	"491": "err_nooperhost",

	"501": "err_umodeunknownflag",
	"502": "err_usersdontmatch",

	"902": "err_nicklocked",
	"904": "err_saslfail",
	"905": "err_sasltoolong",
	"906": "err_saslaborted",
	"907": "err_saslalready",
}

// ReplyName returns the conventional name of a numeric, or the numeric
// itself if it is unknown.
func ReplyName(code string) string {
	if name, ok := replyNames[code]; ok {
		return name
	}
	return code
}

func isNumeric(command string) bool {
	if len(command) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if command[i] < '0' || '9' < command[i] {
			return false
		}
	}
	return true
}

// ReplyType classifies a command the way it is reported in ErrorEvent.
func ReplyType(command string) string {
	if !isNumeric(command) {
		return ReplyNormal
	}
	switch command[0] {
	case '4', '5':
		return ReplyError
	}
	switch command {
	case "902", "904", "905", "906", "907":
		return ReplyError
	}
	return ReplyReply
}

// errorReplies lists the numerics a client subscribes to in order to
// forward protocol errors.
func errorReplies() []string {
	var codes []string
	for code := range replyNames {
		if ReplyType(code) == ReplyError {
			codes = append(codes, code)
		}
	}
	return codes
}
