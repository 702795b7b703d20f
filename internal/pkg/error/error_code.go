package error

const (
	// 0 ~ 999: 成功類別
	SUCCESS = 0 // 200 OK

	// 40000 ~ 49999: 用戶請求錯誤 (400 系列)
	BAD_REQUEST_BODY    = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS  = 40001 // 400 - 無效的請求參數
	BAD_REQUEST_HEADERS = 40002 // 400 - 無效的請求標頭
	TENANT_KEY_INVALID  = 40003 // 400 - 租戶識別字格式錯誤或為保留字
	TENANT_KEY_TAKEN    = 40004 // 400 - 子網域或信箱已被註冊
	INVOICE_STATUS_ERROR = 40005 // 400 - 發票狀態不允許此操作
	STOCK_INSUFFICIENT  = 40006 // 400 - 庫存不足

	// 40100 ~ 40399: 驗證與權限錯誤 (401 403 系列)
	UNAUTHORIZED           = 40100 // 401 - 未授權
	CREDENTIAL_INVALID     = 40101 // 401 - 憑證無效 (密碼錯誤或 token 驗證失敗)
	FORBIDDEN              = 40301 // 403 - 禁止訪問
	TENANT_UNAVAILABLE     = 40302 // 403 - 租戶不存在或已停用
	SUBSCRIPTION_SUSPENDED = 40303 // 403 - 訂閱已暫停
	PRINCIPAL_UNAVAILABLE  = 40304 // 403 - 使用者不存在或已停用
	INSUFFICIENT_PRIVILEGE = 40305 // 403 - 權限不足

	// 40400 ~ 40499: 資源錯誤 (404 系列)
	NOT_FOUND = 40400 // 404 - 資源未找到

	// 42900 ~ 42999: 流量限制錯誤 (429 系列)
	RATE_LIMIT_EXCEEDED = 42900 // 429 - 速率限制超過

	// 50000 ~ 50199: 伺服器內部錯誤 (500 系列)
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料庫錯誤
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停 (維護模式)
	CONNECTION_FAILED   = 50003 // 503 - 租戶資料庫連線建立失敗

	// 50200 ~ 50499: 外部請求錯誤 (502 504 系列)
	EXTERNAL_REQUEST_ERROR = 50200 // 502 - 外部 API 請求錯誤
	GATEWAY_TIMEOUT        = 50400 // 504 - 外部 API 超時
)
