package app

// User facing messages. Server supplied messages take precedence over the
// generic failure texts.
const (
	msgLoginRequired       = "メールアドレスとパスワードを入力してください"
	msgLoginOK             = "ログインしました"
	msgLoginFailed         = "ログインに失敗しました"
	msgLogoutOK            = "ログアウトしました"
	msgFieldsRequired      = "すべてのフィールドを入力してください"
	msgRequiredFields      = "必須項目を入力してください"
	msgPasswordTooShort    = "パスワードは6文字以上で入力してください"
	msgPasswordMismatch    = "新しいパスワードが一致しません"
	msgSignupOK            = "アカウントが作成されました"
	msgSignupFailed        = "アカウント作成に失敗しました"
	msgPasswordChanged     = "パスワードが変更されました"
	msgPasswordFailed      = "パスワード変更に失敗しました"
	msgSessionExpired      = "セッションの有効期限が切れました。再度ログインしてください"
	msgProfileNeedsLogin   = "マイページを表示するにはログインが必要です"
	msgCreateNeedsLogin    = "ファンクラブを作成するにはログインが必要です"
	msgCreateOK            = "ファンクラブが作成されました！"
	msgCreateFailed        = "ファンクラブ作成に失敗しました"
	msgInvalidFee          = "月額料金は0以上で入力してください"
	msgLoadFanclubFailed   = "ファンクラブの読み込みに失敗しました"
	msgLoadFailed          = "データの読み込みに失敗しました"
	msgNoFanclub           = "ファンクラブが選択されていません"
	msgJoinNeedsLogin      = "ファンクラブに参加するにはログインが必要です"
	msgJoinOK              = "ファンクラブに参加しました！"
	msgJoinFailed          = "参加に失敗しました"
	msgLeaveConfirm        = "本当にこのファンクラブから退会しますか？"
	msgLeaveOK             = "ファンクラブから退会しました"
	msgLeaveFailed         = "退会に失敗しました"
	msgAdminOnly           = "管理画面はオーナーのみ利用できます"
	msgTitleRequired       = "タイトルを入力してください"
	msgPostOK              = "記事を投稿しました"
	msgPostFailed          = "記事の投稿に失敗しました"
	msgLikeNeedsLogin      = "いいねするにはログインが必要です"
	msgLikeFailed          = "いいねに失敗しました"
	msgChatNeedsLogin      = "チャットにはログインが必要です"
	msgChatEmpty           = "メッセージを入力してください"
	msgChatTooLong         = "メッセージが長すぎます"
	msgChatSent            = "メッセージを送信しました"
	msgChatSendFailed      = "メッセージの送信に失敗しました"
	msgChatDeleteConfirm   = "このメッセージを削除しますか？"
	msgChatDeleted         = "メッセージを削除しました"
	msgChatDeleteFailed    = "メッセージの削除に失敗しました"
	msgChatDeleteForbidden = "このメッセージは削除できません"
	msgChatOffline         = "オフラインのため保存済みのチャットを表示しています"
	msgSearchFailed        = "検索に失敗しました"
	msgUploadNeedsFile     = "画像ファイルを選択してください"
	msgUploadBadType       = "PNG、JPEG、GIF、WebP形式の画像を選択してください"
	msgUploadOK            = "画像がアップロードされました"
	msgUploadFailed        = "画像アップロードに失敗しました"
	msgUnknownTab          = "不明なタブです"
)
