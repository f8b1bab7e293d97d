package loader

// Function ids understood by the host lookup. Ids are grouped by
// subsystem; gaps are reserved.
const (
	IDPluginManagerSpawn   uint16 = 0
	IDPluginManagerBlockOn uint16 = 1

	IDNewListener                   uint16 = 100
	IDListenerNextEventWithPriority uint16 = 101

	IDEventIntercept     uint16 = 200
	IDEventIsIntercepted uint16 = 201

	IDClientGetID       uint16 = 300
	IDClientGetNickname uint16 = 301
	IDClientGetList     uint16 = 302
	IDFindClient        uint16 = 303
	IDClientFindGroup   uint16 = 304
	IDClientFindFriend  uint16 = 305
	IDClientGetGroups   uint16 = 306
	IDClientGetFriends  uint16 = 307
	IDClientClone       uint16 = 320
	IDClientDrop        uint16 = 321

	IDGroupGetID              uint16 = 400
	IDGroupGetName            uint16 = 401
	IDGroupGetClient          uint16 = 402
	IDGroupGetMembers         uint16 = 403
	IDGroupFindMember         uint16 = 404
	// 405 is reserved.
	IDGroupSendMessage        uint16 = 406
	IDGroupUploadImage        uint16 = 407
	IDGroupQuit               uint16 = 408
	IDGroupChangeName         uint16 = 409
	IDGroupSendForwardMessage uint16 = 410
	IDGroupInvite             uint16 = 411
	IDGroupClone              uint16 = 420
	IDGroupDrop               uint16 = 421

	IDFriendGetID       uint16 = 500
	IDFriendGetNickname uint16 = 501
	IDFriendGetClient   uint16 = 502
	IDFriendSendMessage uint16 = 503
	IDFriendUploadImage uint16 = 504
	IDFriendClone       uint16 = 520
	IDFriendDrop        uint16 = 521

	IDNamedMemberGetID          uint16 = 600
	IDNamedMemberGetNickname    uint16 = 601
	IDNamedMemberGetCardName    uint16 = 602
	IDNamedMemberGetGroup       uint16 = 603
	IDNamedMemberChangeCardName uint16 = 604

	IDImageGetID  uint16 = 2000
	IDImageGetURL uint16 = 2002

	IDGroupMessageEventGetGroup   uint16 = 10000
	IDGroupMessageEventGetMessage uint16 = 10001
	IDGroupMessageEventGetSender  uint16 = 10002

	IDFriendMessageEventGetFriend  uint16 = 10100
	IDFriendMessageEventGetMessage uint16 = 10101

	IDLog uint16 = 20000

	IDEnvGetWorkspace uint16 = 30000

	IDMessageChainToJSON   uint16 = 30100
	IDMessageChainFromJSON uint16 = 30101
)
