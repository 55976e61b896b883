package shared

// messages 错误文案（pt-BR）
var messages = map[string]string{
	"error.bad_request":                "Requisição inválida",
	"error.unauthorized":               "Não autenticado",
	"error.forbidden":                  "Sem permissão para esta operação",
	"error.not_found":                  "Recurso não encontrado",
	"error.internal":                   "Erro interno do servidor",
	"error.rate_limited":               "Muitas requisições, tente novamente em %d s",
	"error.login_too_many":             "Muitas tentativas de login, tente novamente em %d s",
	"error.stream_too_many":            "Sincronização interativa iniciada recentemente, aguarde %d s",
	"error.rate_limit_unavailable":     "Serviço de limitação indisponível",
	"error.too_many_requests":          "Muitas requisições, tente novamente mais tarde",
	"error.token_invalid":              "Token inválido",
	"error.token_expired":              "Sessão expirada, faça login novamente",
	"error.invalid_credentials":        "Usuário ou senha incorretos",
	"error.login_failed":               "Falha no login",
	"error.logout_failed":              "Falha ao encerrar sessão",
	"error.internal_token_invalid":     "Token interno inválido",
	"error.admin_id_invalid":           "Identificador de administrador inválido",
	"error.admin_id_type_invalid":      "Tipo de identificador de administrador inválido",
	"error.admin_not_found":            "Administrador não encontrado",
	"error.role_update_failed":         "Falha ao atualizar perfis",
	"error.role_unknown":               "Perfil desconhecido",
	"error.role_fetch_failed":          "Falha ao consultar perfis",
	"error.sync_job_create_failed":     "Falha ao criar sincronização",
	"error.sync_job_fetch_failed":      "Falha ao consultar sincronização",
	"error.sync_job_not_found":         "Sincronização não encontrada",
	"error.sync_job_not_runnable":      "Sincronização já processada",
	"error.sync_job_run_failed":        "Falha ao executar sincronização",
	"error.sync_stream_failed":         "Falha ao iniciar o acompanhamento da sincronização",
	"error.order_not_found":            "Pedido não encontrado",
	"error.order_fetch_failed":         "Falha ao consultar pedidos",
	"error.commission_generate_failed": "Falha ao gerar comissão",
	"error.commission_fetch_failed":    "Falha ao consultar comissões",
	"error.commission_not_found":       "Comissão não encontrada",
	"error.commission_closed":          "Comissão já fechada não pode ser alterada",
	"error.commission_percent_invalid": "Percentual de comissão deve estar entre 0 e 100",
	"error.commission_base_invalid":    "Valor base não pode ser negativo",
	"error.commission_adjust_failed":   "Falha ao ajustar comissão",
	"error.commission_action_invalid":  "Ação de comissão inválida",
	"error.representative_not_found":   "Representante não encontrado",
	"error.representative_required":    "Informe o novo representante",
	"error.transfer_target_required":   "Informe a comissão ou o pedido a transferir",
	"error.settlement_not_found":       "Fechamento não encontrado",
	"error.settlement_fetch_failed":    "Falha ao consultar fechamento",
	"error.notification_fetch_failed":  "Falha ao consultar notificações",
	"error.audit_fetch_failed":         "Falha ao consultar auditoria de perfis",
}

// Message 按 key 取文案，缺失时回退为 key 本身
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
