package config

// DefaultConfigYAML 内置默认配置，外部 config.yaml 可覆盖任意字段
var DefaultConfigYAML = []byte(`server:
  port: ":8080"
  mode: "debug"
  base_url: "http://localhost:8080"

database:
  host: "127.0.0.1"
  port: "3306"
  username: "couplefin"
  password: "couplefin"
  dbname: "couplefin"
  charset: "utf8mb4"

jwt:
  secret: "change-me-in-production"
  expire_hours: 24

email:
  enabled: false
  host: "smtp.example.com"
  port: 465
  username: ""
  password: ""
  from: ""

billing:
  enabled: false
  api_base: "https://api.billing.example.com"
  api_key: ""
  return_url: "http://localhost:8080/settings/billing"

gamification:
  xp_transaction_created: 10
  xp_couple_paired: 50
  xp_account_created: 20
`)
